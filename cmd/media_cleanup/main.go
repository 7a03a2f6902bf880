package main

import (
	"context"
	"flag"
	"log"
	"time"

	"guestgallery/internal/config"
	"guestgallery/internal/database"
	"guestgallery/internal/domain/media"
	"guestgallery/internal/domain/photo"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report orphaned files without deleting them")
	grace := flag.Duration("grace", photo.DefaultSweepGrace, "skip files modified more recently than this")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	originals := media.NewStore(cfg.UploadDir, cfg.UploadURLBase)
	thumbs := media.NewStore(cfg.ThumbnailDir, cfg.ThumbURLBase)
	svc := photo.NewService(photo.NewRepository(db), originals, thumbs, nil, photo.DefaultLimits(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := svc.SweepOrphans(ctx, *grace, *dryRun)
	if err != nil {
		log.Fatalf("media cleanup failed: %v", err)
	}
	log.Printf("media cleanup completed: scanned=%d orphans=%d removed=%d", report.Scanned, len(report.Orphans), report.Removed)
}
