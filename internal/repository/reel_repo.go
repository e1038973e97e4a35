package repository

import (
	"context"

	"trackforge/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReelRepo interface {
	FindByShortcode(ctx context.Context, profileID uint64, shortcode string) (*model.Reel, error)
	ListByProfile(ctx context.Context, profileID uint64) ([]*model.Reel, error)
	ListLatest(ctx context.Context, profileID uint64, limit int) ([]*model.Reel, error)
	Upsert(ctx context.Context, reel *model.Reel) error
}

type reelRepoImpl struct {
	db *gorm.DB
}

func NewReelRepo(db *gorm.DB) ReelRepo {
	return &reelRepoImpl{db: db}
}

func (r *reelRepoImpl) FindByShortcode(ctx context.Context, profileID uint64, shortcode string) (*model.Reel, error) {
	var reel model.Reel
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND shortcode = ?", profileID, shortcode).
		First(&reel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reel, nil
}

func (r *reelRepoImpl) ListByProfile(ctx context.Context, profileID uint64) ([]*model.Reel, error) {
	var reels []*model.Reel
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Find(&reels).Error
	return reels, err
}

func (r *reelRepoImpl) ListLatest(ctx context.Context, profileID uint64, limit int) ([]*model.Reel, error) {
	var reels []*model.Reel
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("taken_at DESC").
		Limit(limit).
		Find(&reels).Error
	return reels, err
}

// Upsert writes the latest current values for a Reel, keyed on
// (profile_id, shortcode).
func (r *reelRepoImpl) Upsert(ctx context.Context, reel *model.Reel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}, {Name: "shortcode"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"view_count", "like_count", "comment_count",
			"views_delta", "likes_delta", "comments_delta",
			"media_url", "mirrored_media_url", "is_video", "has_video_url",
			"duration_seconds", "taken_at", "updated_at",
		}),
	}).Create(reel).Error
}
