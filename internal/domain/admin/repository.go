package admin

import (
	"context"

	"gorm.io/gorm"
)

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Totals(ctx context.Context) (*Totals, error) {
	db := r.db.WithContext(ctx)
	t := &Totals{}

	counts := []struct {
		table string
		where string
		dst   *int64
	}{
		{"photos", "", &t.Photos},
		{"photos", "media_type = 'image'", &t.Images},
		{"photos", "media_type = 'video'", &t.Videos},
		{"likes", "", &t.Likes},
		{"comments", "", &t.Comments},
		{"votes", "", &t.Votes},
	}
	for _, c := range counts {
		q := db.Table(c.table)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	err := db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT uploaded_by AS name FROM photos
			UNION SELECT user_name FROM likes
			UNION SELECT user_name FROM comments
			UNION SELECT user_name FROM votes
		) AS guests`).Row().Scan(&t.Guests)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *statsRepository) Challenges(ctx context.Context) ([]ChallengeStat, error) {
	var out []ChallengeStat
	err := r.db.WithContext(ctx).
		Table("photos AS p").
		Select("p.challenge_id, MAX(p.challenge_title) AS challenge_title, COUNT(DISTINCT p.id) AS photo_count, COUNT(v.id) AS vote_count").
		Joins("LEFT JOIN votes v ON v.photo_id = p.id AND v.challenge_id = p.challenge_id").
		Where("p.challenge_id IS NOT NULL").
		Group("p.challenge_id").
		Order("vote_count DESC").
		Order("p.challenge_id ASC").
		Scan(&out).Error
	return out, err
}

func (r *statsRepository) TopUploaders(ctx context.Context, limit int) ([]UploaderStat, error) {
	var out []UploaderStat
	err := r.db.WithContext(ctx).
		Table("photos").
		Select("uploaded_by, COUNT(*) AS photo_count").
		Group("uploaded_by").
		Order("photo_count DESC").
		Order("uploaded_by ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *statsRepository) MostLiked(ctx context.Context, limit int) ([]LikedPhoto, error) {
	var out []LikedPhoto
	err := r.db.WithContext(ctx).
		Table("photos AS p").
		Select("p.id AS photo_id, p.uploaded_by, p.filename, COUNT(l.id) AS like_count").
		Joins("JOIN likes l ON l.photo_id = p.id").
		Group("p.id, p.uploaded_by, p.filename").
		Order("like_count DESC").
		Order("p.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
