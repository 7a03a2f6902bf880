package photo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	UploadedBy  string
	ChallengeID string
	Limit       int
	Offset      int
}

type Repository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	List(ctx context.Context, f ListFilter) ([]Photo, error)
	DeleteCascade(ctx context.Context, id string) error
	StoredKeys(ctx context.Context) (originals, thumbs map[string]bool, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Photo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Photo, error) {
	var p Photo
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Photo, error) {
	q := r.db.WithContext(ctx).Model(&Photo{})
	if f.UploadedBy != "" {
		q = q.Where("uploaded_by = ?", f.UploadedBy)
	}
	if f.ChallengeID != "" {
		q = q.Where("challenge_id = ?", f.ChallengeID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var photos []Photo
	err := q.Order("uploaded_at DESC").Order("id DESC").Find(&photos).Error
	return photos, err
}

// DeleteCascade removes the photo with its likes, comments and votes in one
// transaction. The photo row is locked first so a concurrent vote or like
// cannot attach to it mid-delete.
func (r *repository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Photo
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", id).Take(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPhotoNotFound
		}
		if err != nil {
			return err
		}

		for _, table := range []string{"likes", "comments", "votes"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE photo_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&Photo{}).Error
	})
}

// StoredKeys returns every original and thumbnail key a photo row points at.
func (r *repository) StoredKeys(ctx context.Context) (map[string]bool, map[string]bool, error) {
	var rows []struct {
		Filename          string
		ThumbnailFilename *string
	}
	err := r.db.WithContext(ctx).Model(&Photo{}).Select("filename, thumbnail_filename").Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	originals := make(map[string]bool, len(rows))
	thumbs := make(map[string]bool, len(rows))
	for _, row := range rows {
		originals[row.Filename] = true
		if row.ThumbnailFilename != nil {
			thumbs[*row.ThumbnailFilename] = true
		}
	}
	return originals, thumbs, nil
}
