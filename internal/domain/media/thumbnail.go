package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailSize    = 300
	ThumbnailQuality = 80
	ThumbnailPrefix  = "thumb-"
	ThumbnailExt     = ".jpg"

	videoFrameOffset = "1"
)

// Deriver writes fixed-size JPEG previews into its thumbnail store.
type Deriver struct {
	thumbs     *Store
	ffmpegPath string
	timeout    time.Duration
}

func NewDeriver(thumbs *Store, ffmpegPath string, timeout time.Duration) *Deriver {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Deriver{thumbs: thumbs, ffmpegPath: ffmpegPath, timeout: timeout}
}

// Derive returns the thumbnail key for originalPath, or nil when no preview
// could be produced. Failures are logged and never returned.
func (d *Deriver) Derive(ctx context.Context, originalPath string, mediaType Type) *string {
	key, err := d.derive(ctx, originalPath, mediaType)
	if err != nil {
		log.Printf("thumbnail_failed path=%s media_type=%s error=%q", originalPath, mediaType, err.Error())
		return nil
	}
	return &key
}

// ThumbnailKey maps an original key to its preview key: same stem, fixed
// prefix, always ".jpg".
func ThumbnailKey(original string) string {
	base := filepath.Base(original)
	return ThumbnailPrefix + strings.TrimSuffix(base, filepath.Ext(base)) + ThumbnailExt
}

func (d *Deriver) derive(ctx context.Context, originalPath string, mediaType Type) (string, error) {
	if err := d.thumbs.ensureDir(); err != nil {
		return "", err
	}
	key := ThumbnailKey(originalPath)
	dst := d.thumbs.Resolve(key)

	var err error
	switch mediaType {
	case TypeImage:
		err = d.deriveImage(ctx, originalPath, dst)
	case TypeVideo:
		err = d.deriveVideo(ctx, originalPath, dst)
	default:
		err = fmt.Errorf("unsupported media type %q", mediaType)
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return key, nil
}

func (d *Deriver) deriveImage(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if errors.Is(err, image.ErrFormat) {
		// HEIC/HEIF and anything else without a Go decoder
		return d.deriveWithFFmpeg(ctx, src, dst)
	}
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, SquareThumbnail(img, ThumbnailSize), &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		out.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Close()
}

func (d *Deriver) deriveVideo(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.extractFrame(ctx, src, dst, videoFrameOffset)
	if err == nil && nonEmpty(dst) {
		return nil
	}
	// clips shorter than the offset yield no frame; take the first one
	if err := d.extractFrame(ctx, src, dst, "0"); err != nil {
		return err
	}
	if !nonEmpty(dst) {
		return errors.New("ffmpeg produced no frame")
	}
	return nil
}

func (d *Deriver) deriveWithFFmpeg(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.extractFrame(ctx, src, dst, "0"); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if !nonEmpty(dst) {
		return errors.New("ffmpeg produced no image")
	}
	return nil
}

func (d *Deriver) extractFrame(ctx context.Context, src, dst, offset string) error {
	filter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		ThumbnailSize, ThumbnailSize, ThumbnailSize, ThumbnailSize)
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-y", "-loglevel", "error",
		"-ss", offset,
		"-i", src,
		"-frames:v", "1",
		"-vf", filter,
		"-q:v", "3",
		"-f", "image2",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg at %ss: %w: %s", offset, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SquareThumbnail center-crops img to a square and scales it to size×size.
func SquareThumbnail(img image.Image, size uint) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	origin := image.Point{X: b.Min.X + (b.Dx()-side)/2, Y: b.Min.Y + (b.Dy()-side)/2}

	square := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(square, square.Bounds(), img, origin, draw.Src)

	return resize.Resize(size, size, square, resize.Lanczos3)
}

func nonEmpty(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Size() > 0
}
