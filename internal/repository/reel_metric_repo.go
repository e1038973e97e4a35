package repository

import (
	"context"

	"trackforge/internal/model"

	"gorm.io/gorm"
)

type ReelMetricRepo interface {
	Insert(ctx context.Context, rm *model.ReelMetric) error
	ListForReel(ctx context.Context, reelID uint64) ([]*model.ReelMetric, error)
}

type reelMetricRepoImpl struct {
	db *gorm.DB
}

func NewReelMetricRepo(db *gorm.DB) ReelMetricRepo {
	return &reelMetricRepoImpl{db: db}
}

// Insert appends a ReelMetric row. Never updated or deleted.
func (r *reelMetricRepoImpl) Insert(ctx context.Context, rm *model.ReelMetric) error {
	return r.db.WithContext(ctx).Create(rm).Error
}

func (r *reelMetricRepoImpl) ListForReel(ctx context.Context, reelID uint64) ([]*model.ReelMetric, error) {
	var metrics []*model.ReelMetric
	err := r.db.WithContext(ctx).
		Where("reel_id = ?", reelID).
		Order("captured_at ASC").
		Find(&metrics).Error
	return metrics, err
}
