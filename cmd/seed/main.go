package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"math/rand"

	"guestgallery/internal/config"
	"guestgallery/internal/database"
	"guestgallery/internal/domain/engagement"
	"guestgallery/internal/domain/media"
	"guestgallery/internal/domain/photo"
	"guestgallery/internal/domain/vote"
)

var (
	guests     = []string{"Aigerim", "Bekzat", "Dina", "Erlan", "Gulnaz", "Yerlan"}
	challenges = []struct{ id, title string }{
		{"first-dance", "Best first dance shot"},
		{"funniest-face", "Funniest face of the night"},
	}
	comments = []string{"Beautiful!", "Haha, love it", "Who took this?", "Frame it!"}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	defer database.Close(db)

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	originals := media.NewStore(cfg.UploadDir, cfg.UploadURLBase)
	thumbs := media.NewStore(cfg.ThumbnailDir, cfg.ThumbURLBase)
	deriver := media.NewDeriver(thumbs, cfg.FFmpegPath, cfg.ThumbnailWait)

	photos := photo.NewService(photo.NewRepository(db), originals, thumbs, deriver, photo.DefaultLimits(), nil)
	ledger := engagement.NewService(engagement.NewRepository(db), nil)
	votes := vote.NewService(vote.NewRepository(db), originals, thumbs, nil)
	ctx := context.Background()

	// ================== PHOTOS ==================
	log.Println("Uploading photos...")
	var general []string
	batch := make([]photo.IncomingFile, 0, 6)
	for i := 0; i < 6; i++ {
		batch = append(batch, demoFile(fmt.Sprintf("party-%02d.jpg", i+1)))
	}
	res, err := photos.Ingest(ctx, batch, photo.UploadMetadata{UploadedBy: guests[0], DeviceInfo: "seed"})
	if err != nil {
		log.Fatal("batch upload failed:", err)
	}
	for _, it := range res.Items {
		if it.Photo != nil {
			general = append(general, it.Photo.ID)
		}
	}

	byChallenge := map[string][]string{}
	for _, ch := range challenges {
		for i, g := range guests {
			if i%2 == 1 {
				continue
			}
			p, err := photos.IngestSingle(ctx, demoFile(ch.id+".jpg"), photo.UploadMetadata{
				UploadedBy:     g,
				ChallengeID:    ch.id,
				ChallengeTitle: ch.title,
				DeviceInfo:     "seed",
			})
			if err != nil {
				log.Fatal("challenge upload failed:", err)
			}
			byChallenge[ch.id] = append(byChallenge[ch.id], p.ID)
		}
	}

	// ================== LIKES & COMMENTS ==================
	log.Println("Adding likes and comments...")
	for _, id := range general {
		for _, g := range guests {
			if rand.Intn(2) == 0 {
				continue
			}
			if _, err := ledger.ToggleLike(ctx, id, g); err != nil {
				log.Fatal("like failed:", err)
			}
		}
		if _, err := ledger.AddComment(ctx, id, guests[rand.Intn(len(guests))], comments[rand.Intn(len(comments))]); err != nil {
			log.Fatal("comment failed:", err)
		}
	}

	// ================== VOTES ==================
	log.Println("Casting votes...")
	for chID, ids := range byChallenge {
		for _, g := range guests {
			if _, err := votes.Vote(ctx, chID, ids[rand.Intn(len(ids))], g); err != nil {
				log.Fatal("vote failed:", err)
			}
		}
	}

	total := len(general)
	for _, ids := range byChallenge {
		total += len(ids)
	}
	log.Printf("Seed completed: photos=%d challenges=%d guests=%d", total, len(challenges), len(guests))
}

// demoFile renders a random gradient JPEG.
func demoFile(name string) photo.IncomingFile {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	base := color.RGBA{R: uint8(rand.Intn(256)), G: uint8(rand.Intn(256)), B: uint8(rand.Intn(256)), A: 255}
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			img.Set(x, y, color.RGBA{R: base.R + uint8(x/5), G: base.G + uint8(y/4), B: base.B, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		log.Fatal("encode demo image failed:", err)
	}
	data := buf.Bytes()

	return photo.IncomingFile{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
