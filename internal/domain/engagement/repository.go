package engagement

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guestgallery/internal/database"
)

type Repository interface {
	ToggleLike(ctx context.Context, photoID, userName string) (bool, error)
	CountLikes(ctx context.Context, photoID string) (int64, error)
	HasLiked(ctx context.Context, photoID, userName string) (bool, error)
	AddComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, photoID string) ([]Comment, error)
	PhotoExists(ctx context.Context, photoID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ToggleLike flips the like inside one transaction. If a concurrent request
// from the same user wins the insert race, the unique index rejects ours and
// the like is simply reported as present.
func (r *repository) ToggleLike(ctx context.Context, photoID, userName string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPhoto(tx, photoID); err != nil {
			return err
		}

		var existing Like
		err := tx.Where("photo_id = ? AND user_name = ?", photoID, userName).Take(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&Like{}, existing.ID).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if _, err := insertLike(tx, photoID, userName); err != nil {
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}

// insertLike reports false when the unique index on (photo_id, user_name)
// already holds the like. The savepoint keeps tx usable afterwards.
func insertLike(tx *gorm.DB, photoID, userName string) (bool, error) {
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&Like{PhotoID: photoID, UserName: userName}).Error
	})
	if err == nil {
		return true, nil
	}
	if database.IsUniqueViolation(err) {
		return false, nil
	}
	return false, err
}

func (r *repository) CountLikes(ctx context.Context, photoID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Like{}).Where("photo_id = ?", photoID).Count(&n).Error
	return n, err
}

func (r *repository) HasLiked(ctx context.Context, photoID, userName string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Like{}).Where("photo_id = ? AND user_name = ?", photoID, userName).Count(&n).Error
	return n > 0, err
}

func (r *repository) AddComment(ctx context.Context, c *Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPhoto(tx, c.PhotoID); err != nil {
			return err
		}
		return tx.Create(c).Error
	})
}

func (r *repository) ListComments(ctx context.Context, photoID string) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Where("photo_id = ?", photoID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *repository) PhotoExists(ctx context.Context, photoID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("photos").Where("id = ?", photoID).Count(&n).Error
	return n > 0, err
}

// lockPhoto holds a shared lock on the photo row for the rest of the
// transaction so a cascading delete cannot interleave.
func lockPhoto(tx *gorm.DB, photoID string) error {
	var ids []string
	err := tx.Table("photos").
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ?", photoID).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrPhotoNotFound
	}
	return nil
}
