package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultAdminPassword = "change-me-admin"
	defaultJWTSecret     = "change-me-jwt-secret"
)

// Config is the process-wide runtime configuration, read from the environment
// (optionally seeded from a .env file).
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// DatabaseURL selects the driver: postgres:// URLs use PostgreSQL, anything
	// else is treated as a SQLite DSN.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"gallery.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"`

	UploadDir     string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	ThumbnailDir  string        `env:"THUMBNAIL_DIR" envDefault:"./uploads/thumbnails"`
	UploadURLBase string        `env:"UPLOAD_URL_BASE" envDefault:"/uploads"`
	ThumbURLBase  string        `env:"THUMBNAIL_URL_BASE" envDefault:"/thumbnails"`
	FFmpegPath    string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	MaxImageBytes int64         `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
	MaxVideoBytes int64         `env:"MAX_VIDEO_BYTES" envDefault:"52428800"`
	MaxBatchFiles int           `env:"MAX_BATCH_FILES" envDefault:"30"`
	ThumbnailWait time.Duration `env:"THUMBNAIL_TIMEOUT" envDefault:"30s"`

	AdminPassword string        `env:"ADMIN_PASSWORD" envDefault:"change-me-admin"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-me-jwt-secret"`
	AdminTokenTTL time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s port=%d upload_dir=%s thumbnail_dir=%s", cfg.AppEnv, cfg.Port, cfg.UploadDir, cfg.ThumbnailDir)
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.UploadDir) == "" || strings.TrimSpace(cfg.ThumbnailDir) == "" {
		return fmt.Errorf("UPLOAD_DIR and THUMBNAIL_DIR must not be empty")
	}
	if cfg.MaxImageBytes <= 0 || cfg.MaxVideoBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES and MAX_VIDEO_BYTES must be > 0")
	}
	if cfg.MaxBatchFiles <= 0 {
		return fmt.Errorf("MAX_BATCH_FILES must be > 0")
	}
	if cfg.ThumbnailWait <= 0 {
		return fmt.Errorf("THUMBNAIL_TIMEOUT must be > 0")
	}
	if cfg.AdminTokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL must be > 0")
	}

	for _, o := range cfg.CORSAllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q must be \"*\" or start with http:// or https://", o)
		}
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.AdminPassword, defaultAdminPassword) {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD must be set and not default")
		}
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
