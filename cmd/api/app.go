package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"guestgallery/internal/config"
	"guestgallery/internal/domain/admin"
	"guestgallery/internal/domain/engagement"
	"guestgallery/internal/domain/live"
	"guestgallery/internal/domain/media"
	"guestgallery/internal/domain/photo"
	"guestgallery/internal/domain/vote"
	"guestgallery/internal/middleware"
	jwtsvc "guestgallery/internal/pkg/jwt"
)

type app struct {
	router *gin.Engine
	hub    *live.Hub
}

// newApp wires every component onto db. The caller owns db and must close
// the hub before shutting the server down.
func newApp(cfg *config.Config, db *gorm.DB) (*app, error) {
	originals := media.NewStore(cfg.UploadDir, cfg.UploadURLBase)
	thumbs := media.NewStore(cfg.ThumbnailDir, cfg.ThumbURLBase)
	deriver := media.NewDeriver(thumbs, cfg.FFmpegPath, cfg.ThumbnailWait)

	hub := live.NewHub()
	j := jwtsvc.New(cfg.JWTSecret, cfg.AdminTokenTTL)

	photoService := photo.NewService(photo.NewRepository(db), originals, thumbs, deriver, photo.Limits{
		MaxImageBytes: cfg.MaxImageBytes,
		MaxVideoBytes: cfg.MaxVideoBytes,
		MaxBatchFiles: cfg.MaxBatchFiles,
	}, hub)
	engagementService := engagement.NewService(engagement.NewRepository(db), hub)
	voteService := vote.NewService(vote.NewRepository(db), originals, thumbs, hub)
	adminService, err := admin.NewService(admin.NewStatsRepository(db), j, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))
	r.MaxMultipartMemory = 32 << 20

	r.Static(cfg.UploadURLBase, cfg.UploadDir)
	r.Static(cfg.ThumbURLBase, cfg.ThumbnailDir)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		photo.RegisterRoutes(api, photo.NewHandler(photoService))
		engagement.RegisterRoutes(api, engagement.NewHandler(engagementService))
		vote.RegisterRoutes(api, vote.NewHandler(voteService))
		live.RegisterRoutes(api, live.NewHandler(hub, cfg.CORSAllowedOrigins))
		admin.RegisterRoutes(api, admin.NewHandler(adminService), middleware.JWTAuth(j), middleware.AdminOnly())
	}

	return &app{router: r, hub: hub}, nil
}
