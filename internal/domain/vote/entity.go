package vote

import "time"

// Vote is a user's single active vote within a challenge. (challenge_id,
// user_name) is unique; moving a vote updates PhotoID in place.
type Vote struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"-"`
	PhotoID     string    `gorm:"column:photo_id" json:"photo_id"`
	ChallengeID string    `gorm:"column:challenge_id" json:"challenge_id"`
	UserName    string    `gorm:"column:user_name" json:"user_name"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Vote) TableName() string { return "votes" }

type Action string

const (
	ActionVoted     Action = "voted"
	ActionMoved     Action = "moved"
	ActionWithdrawn Action = "withdrawn"
)

type VoteResult struct {
	Action          Action           `json:"action"`
	ChallengeID     string           `json:"challenge_id"`
	PhotoID         string           `json:"photo_id"`
	PreviousPhotoID *string          `json:"previous_photo_id"`
	VoteCounts      map[string]int64 `json:"vote_counts"`
	TotalVotes      int64            `json:"total_votes"`
}

type Counts struct {
	ChallengeID string           `json:"challenge_id"`
	VoteCounts  map[string]int64 `json:"vote_counts"`
	TotalVotes  int64            `json:"total_votes"`
	UserVote    *string          `json:"user_vote"`
}

type Status struct {
	HasVotedForThis  bool  `json:"has_voted_for_this"`
	HasVotedForOther bool  `json:"has_voted_for_other"`
	VoteCountForThis int64 `json:"vote_count_for_this"`
}

// Entry is a challenge photo with its vote tally. Rank is set only on
// leaderboard results.
type Entry struct {
	Rank              int       `gorm:"-" json:"rank,omitempty"`
	PhotoID           string    `gorm:"column:photo_id" json:"photo_id"`
	UploadedBy        string    `gorm:"column:uploaded_by" json:"uploaded_by"`
	Filename          string    `gorm:"column:filename" json:"filename"`
	ThumbnailFilename *string   `gorm:"column:thumbnail_filename" json:"thumbnail_filename"`
	MediaType         string    `gorm:"column:media_type" json:"media_type"`
	ChallengeTitle    *string   `gorm:"column:challenge_title" json:"challenge_title"`
	UploadedAt        time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
	VoteCount         int64     `gorm:"column:vote_count" json:"vote_count"`

	URL          string  `gorm:"-" json:"url"`
	ThumbnailURL *string `gorm:"-" json:"thumbnail_url"`
}
