package database

import (
	"time"

	"gorm.io/gorm"
)

// Table shapes are frozen per migration so later model changes never rewrite
// history.

type photoV1 struct {
	ID                string    `gorm:"column:id;primaryKey;size:36"`
	Filename          string    `gorm:"column:filename;size:255;not null"`
	ThumbnailFilename *string   `gorm:"column:thumbnail_filename;size:255"`
	MediaType         string    `gorm:"column:media_type;size:10;not null;default:image"`
	UploadedBy        string    `gorm:"column:uploaded_by;size:100;not null;index"`
	UploadedAt        time.Time `gorm:"column:uploaded_at;not null;index"`
	ChallengeID       *string   `gorm:"column:challenge_id;size:64;index"`
	ChallengeTitle    *string   `gorm:"column:challenge_title;size:255"`
	DeviceInfo        string    `gorm:"column:device_info;type:text"`
	UploadKind        string    `gorm:"column:upload_kind;size:16;not null;default:general"`
	Metadata          *string   `gorm:"column:metadata;type:text"`
}

func (photoV1) TableName() string { return "photos" }

type likeV1 struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PhotoID   string    `gorm:"column:photo_id;size:36;not null;uniqueIndex:idx_likes_photo_user"`
	UserName  string    `gorm:"column:user_name;size:100;not null;uniqueIndex:idx_likes_photo_user"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (likeV1) TableName() string { return "likes" }

type commentV1 struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PhotoID   string    `gorm:"column:photo_id;size:36;not null;index"`
	UserName  string    `gorm:"column:user_name;size:100;not null"`
	Text      string    `gorm:"column:text;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

func (commentV1) TableName() string { return "comments" }

type voteV1 struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PhotoID     string    `gorm:"column:photo_id;size:36;not null;index"`
	ChallengeID string    `gorm:"column:challenge_id;size:64;not null;uniqueIndex:idx_votes_challenge_user"`
	UserName    string    `gorm:"column:user_name;size:100;not null;uniqueIndex:idx_votes_challenge_user"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (voteV1) TableName() string { return "votes" }

// Migrations returns the ordered schema history.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_gallery_tables",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&photoV1{}, &likeV1{}, &commentV1{}, &voteV1{})
			},
		},
		{
			Version: 2,
			Name:    "backfill_media_type_and_thumbnails",
			Up: func(tx *gorm.DB) error {
				if err := tx.Exec(`UPDATE photos SET thumbnail_filename = NULL WHERE thumbnail_filename = ''`).Error; err != nil {
					return err
				}
				return tx.Exec(`
					UPDATE photos SET media_type = 'video'
					WHERE media_type <> 'video' AND (
						LOWER(filename) LIKE '%.mp4' OR LOWER(filename) LIKE '%.mov' OR
						LOWER(filename) LIKE '%.webm' OR LOWER(filename) LIKE '%.3gp' OR
						LOWER(filename) LIKE '%.avi'
					)`).Error
			},
		},
		{
			Version: 3,
			Name:    "index_photos_challenge_uploaded_at",
			Up: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_photos_challenge_uploaded ON photos (challenge_id, uploaded_at)`).Error
			},
		},
	}
}
