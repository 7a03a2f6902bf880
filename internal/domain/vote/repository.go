package vote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guestgallery/internal/database"
)

type Repository interface {
	Cast(ctx context.Context, challengeID, photoID, userName string) (*VoteResult, error)
	Find(ctx context.Context, challengeID, userName string) (*Vote, error)
	CountsByPhoto(ctx context.Context, challengeID string) (map[string]int64, error)
	CountForPhoto(ctx context.Context, challengeID, photoID string) (int64, error)
	Entries(ctx context.Context, challengeID string, limit int, byVotes bool) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Cast applies one vote transition and recomputes the challenge tallies in
// the same transaction.
func (r *repository) Cast(ctx context.Context, challengeID, photoID, userName string) (*VoteResult, error) {
	res := &VoteResult{ChallengeID: challengeID, PhotoID: photoID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkPhoto(tx, challengeID, photoID); err != nil {
			return err
		}

		current, err := findForUpdate(tx, challengeID, userName)
		if err != nil {
			return err
		}

		switch {
		case current == nil:
			inserted, err := insertVote(tx, challengeID, photoID, userName)
			if err != nil {
				return err
			}
			if inserted {
				res.Action = ActionVoted
				break
			}
			// Lost the insert race: the other row is now ours to move.
			if current, err = findForUpdate(tx, challengeID, userName); err != nil {
				return err
			}
			if current == nil {
				return errors.New("vote row vanished after unique violation")
			}
			if err := moveVote(tx, current, photoID, res); err != nil {
				return err
			}
		case current.PhotoID == photoID:
			if err := tx.Delete(&Vote{}, current.ID).Error; err != nil {
				return err
			}
			res.Action = ActionWithdrawn
		default:
			if err := moveVote(tx, current, photoID, res); err != nil {
				return err
			}
		}

		counts, err := countsByPhoto(tx, challengeID)
		if err != nil {
			return err
		}
		res.VoteCounts = counts
		res.TotalVotes = total(counts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repository) Find(ctx context.Context, challengeID, userName string) (*Vote, error) {
	var v Vote
	err := r.db.WithContext(ctx).Where("challenge_id = ? AND user_name = ?", challengeID, userName).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) CountsByPhoto(ctx context.Context, challengeID string) (map[string]int64, error) {
	return countsByPhoto(r.db.WithContext(ctx), challengeID)
}

func (r *repository) CountForPhoto(ctx context.Context, challengeID, photoID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Vote{}).
		Where("challenge_id = ? AND photo_id = ?", challengeID, photoID).
		Count(&n).Error
	return n, err
}

// Entries lists the challenge's photos with their vote counts. Photos
// without votes are included. byVotes orders for the leaderboard; otherwise
// newest uploads come first.
func (r *repository) Entries(ctx context.Context, challengeID string, limit int, byVotes bool) ([]Entry, error) {
	q := r.db.WithContext(ctx).
		Table("photos AS p").
		Select(`p.id AS photo_id, p.uploaded_by, p.filename, p.thumbnail_filename, p.media_type,
			p.challenge_title, p.uploaded_at, COUNT(v.id) AS vote_count`).
		Joins("LEFT JOIN votes v ON v.photo_id = p.id AND v.challenge_id = ?", challengeID).
		Where("p.challenge_id = ?", challengeID).
		Group("p.id, p.uploaded_by, p.filename, p.thumbnail_filename, p.media_type, p.challenge_title, p.uploaded_at")

	if byVotes {
		q = q.Order("vote_count DESC").Order("p.uploaded_at ASC").Order("p.id ASC")
	} else {
		q = q.Order("p.uploaded_at DESC").Order("p.id DESC")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []Entry
	if err := q.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// checkPhoto share-locks the photo so a cascading delete cannot remove it
// while the vote is written.
func checkPhoto(tx *gorm.DB, challengeID, photoID string) error {
	var challenges []sql.NullString
	err := tx.Table("photos").
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ?", photoID).
		Pluck("challenge_id", &challenges).Error
	if err != nil {
		return err
	}
	if len(challenges) == 0 {
		return ErrPhotoNotFound
	}
	if !challenges[0].Valid || challenges[0].String != challengeID {
		return ErrPhotoNotInChallenge
	}
	return nil
}

func findForUpdate(tx *gorm.DB, challengeID, userName string) (*Vote, error) {
	var v Vote
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("challenge_id = ? AND user_name = ?", challengeID, userName).
		Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// insertVote reports false when the unique index on (challenge_id,
// user_name) rejected the row. The savepoint keeps the outer transaction
// usable on PostgreSQL.
func insertVote(tx *gorm.DB, challengeID, photoID, userName string) (bool, error) {
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&Vote{ChallengeID: challengeID, PhotoID: photoID, UserName: userName}).Error
	})
	if err == nil {
		return true, nil
	}
	if database.IsUniqueViolation(err) {
		return false, nil
	}
	return false, err
}

func moveVote(tx *gorm.DB, current *Vote, photoID string, res *VoteResult) error {
	if current.PhotoID == photoID {
		res.Action = ActionVoted
		return nil
	}
	err := tx.Model(&Vote{}).
		Where("id = ?", current.ID).
		Updates(map[string]any{"photo_id": photoID, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return err
	}
	prev := current.PhotoID
	res.Action = ActionMoved
	res.PreviousPhotoID = &prev
	return nil
}

func countsByPhoto(db *gorm.DB, challengeID string) (map[string]int64, error) {
	var rows []struct {
		PhotoID string
		N       int64
	}
	err := db.Model(&Vote{}).
		Select("photo_id, COUNT(*) AS n").
		Where("challenge_id = ?", challengeID).
		Group("photo_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PhotoID] = row.N
	}
	return counts, nil
}

func total(counts map[string]int64) int64 {
	var n int64
	for _, c := range counts {
		n += c
	}
	return n
}
