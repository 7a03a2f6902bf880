package admin

import "time"

type Totals struct {
	Photos   int64 `json:"photos"`
	Images   int64 `json:"images"`
	Videos   int64 `json:"videos"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Votes    int64 `json:"votes"`
	Guests   int64 `json:"guests"`
}

type ChallengeStat struct {
	ChallengeID    string  `gorm:"column:challenge_id" json:"challenge_id"`
	ChallengeTitle *string `gorm:"column:challenge_title" json:"challenge_title"`
	Photos         int64   `gorm:"column:photo_count" json:"photos"`
	Votes          int64   `gorm:"column:vote_count" json:"votes"`
}

type UploaderStat struct {
	UploadedBy string `gorm:"column:uploaded_by" json:"uploaded_by"`
	Photos     int64  `gorm:"column:photo_count" json:"photos"`
}

type LikedPhoto struct {
	PhotoID    string `gorm:"column:photo_id" json:"photo_id"`
	UploadedBy string `gorm:"column:uploaded_by" json:"uploaded_by"`
	Filename   string `gorm:"column:filename" json:"filename"`
	Likes      int64  `gorm:"column:like_count" json:"likes"`
}

type Stats struct {
	Totals       Totals          `json:"totals"`
	Challenges   []ChallengeStat `json:"challenges"`
	TopUploaders []UploaderStat  `json:"top_uploaders"`
	MostLiked    []LikedPhoto    `json:"most_liked"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
