package repository

import (
	"context"
	"time"

	"trackforge/internal/model"

	"gorm.io/gorm"
)

type DeltaRepo interface {
	Insert(ctx context.Context, delta *model.Delta) error
	GetLatest(ctx context.Context, profileID uint64) (*model.Delta, error)
	GetSince(ctx context.Context, profileID uint64, from time.Time) ([]*model.Delta, error)
}

type deltaRepoImpl struct {
	db *gorm.DB
}

func NewDeltaRepo(db *gorm.DB) DeltaRepo {
	return &deltaRepoImpl{db: db}
}

// Insert appends a Delta row. Append-only.
func (r *deltaRepoImpl) Insert(ctx context.Context, delta *model.Delta) error {
	return r.db.WithContext(ctx).Create(delta).Error
}

func (r *deltaRepoImpl) GetLatest(ctx context.Context, profileID uint64) (*model.Delta, error) {
	var d model.Delta
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("captured_at DESC, id DESC").
		First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *deltaRepoImpl) GetSince(ctx context.Context, profileID uint64, from time.Time) ([]*model.Delta, error) {
	var deltas []*model.Delta
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND captured_at >= ?", profileID, from).
		Order("captured_at ASC, id ASC").
		Find(&deltas).Error
	return deltas, err
}
