package engagement

import "time"

// Like exists iff UserName likes PhotoID; (photo_id, user_name) is unique.
type Like struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"-"`
	PhotoID   string    `gorm:"column:photo_id" json:"photo_id"`
	UserName  string    `gorm:"column:user_name" json:"user_name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Like) TableName() string { return "likes" }

// Comment is append-only.
type Comment struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	PhotoID   string    `gorm:"column:photo_id" json:"photo_id"`
	UserName  string    `gorm:"column:user_name" json:"user_name"`
	Text      string    `gorm:"column:text" json:"text"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

type Summary struct {
	PhotoID   string    `json:"photo_id"`
	LikeCount int64     `json:"like_count"`
	Liked     bool      `json:"liked"`
	Comments  []Comment `json:"comments"`
}
