package photo

import (
	"time"

	"guestgallery/internal/domain/media"
)

type UploadKind string

const (
	KindGeneral   UploadKind = "general"
	KindChallenge UploadKind = "challenge"
)

// MetadataVersion is bumped whenever Metadata gains fields readers must know about.
const MetadataVersion = 1

// Metadata is the forward-compatible payload stored next to the queried
// columns. Older rows may have none.
type Metadata struct {
	Version      int    `json:"version"`
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

// Photo is an uploaded image or video. Rows are never updated; they are only
// created and deleted.
type Photo struct {
	ID                string     `gorm:"column:id;primaryKey" json:"id"`
	Filename          string     `gorm:"column:filename" json:"filename"`
	ThumbnailFilename *string    `gorm:"column:thumbnail_filename" json:"thumbnail_filename"`
	MediaType         media.Type `gorm:"column:media_type" json:"media_type"`
	UploadedBy        string     `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt        time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	ChallengeID       *string    `gorm:"column:challenge_id" json:"challenge_id"`
	ChallengeTitle    *string    `gorm:"column:challenge_title" json:"challenge_title"`
	DeviceInfo        string     `gorm:"column:device_info" json:"device_info"`
	UploadKind        UploadKind `gorm:"column:upload_kind" json:"upload_kind"`
	Metadata          *Metadata  `gorm:"column:metadata;serializer:json" json:"metadata,omitempty"`

	URL          string  `gorm:"-" json:"url"`
	ThumbnailURL *string `gorm:"-" json:"thumbnail_url"`
}

func (Photo) TableName() string { return "photos" }
