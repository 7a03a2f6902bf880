package media

import "strings"

// Type is the coarse kind of an uploaded file.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
)

// AllowedMimeTypes is the upload allow-list.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/heic":      true,
	"image/heif":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"video/3gpp":      true,
	"video/x-msvideo": true,
}

// TypeFromMime derives the media type from the MIME prefix.
func TypeFromMime(mime string) Type {
	if strings.HasPrefix(strings.ToLower(mime), "video/") {
		return TypeVideo
	}
	return TypeImage
}

// NormalizeMime lowercases and strips parameters ("image/jpeg; q=1").
func NormalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
