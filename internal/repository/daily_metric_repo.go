package repository

import (
	"context"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/pkg/apperr"

	"gorm.io/gorm"
)

type DailyMetricFields struct {
	FollowersClose, FollowersDelta int
	FollowingClose, FollowingDelta int
	MediaCountClose, MediaCountDelta int
	ReelCountClose, ReelCountDelta int
	ViewsGrowth, LikesGrowth, CommentsGrowth int
}

type DailyMetricRepo interface {
	GetByDate(ctx context.Context, profileID uint64, date time.Time) (*model.DailyMetric, error)
	Insert(ctx context.Context, metric *model.DailyMetric) error
	// UpdateForToday updates only the row for (profileID, today). It refuses
	// to touch any row whose date differs, preserving daily isolation.
	UpdateForToday(ctx context.Context, profileID uint64, today time.Time, fields DailyMetricFields) error
	GetLatestBefore(ctx context.Context, profileID uint64, date time.Time) (*model.DailyMetric, error)
	GetLatest(ctx context.Context, profileID uint64) (*model.DailyMetric, error)
}

type dailyMetricRepoImpl struct {
	db *gorm.DB
}

func NewDailyMetricRepo(db *gorm.DB) DailyMetricRepo {
	return &dailyMetricRepoImpl{db: db}
}

func (r *dailyMetricRepoImpl) GetByDate(ctx context.Context, profileID uint64, date time.Time) (*model.DailyMetric, error) {
	var m model.DailyMetric
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND date = ?", profileID, date).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *dailyMetricRepoImpl) Insert(ctx context.Context, metric *model.DailyMetric) error {
	err := r.db.WithContext(ctx).Create(metric).Error
	if err != nil && isDuplicateKeyErr(err) {
		return apperr.Wrap(apperr.KindConflict, err, "daily metric row already exists for this date")
	}
	return err
}

func (r *dailyMetricRepoImpl) UpdateForToday(ctx context.Context, profileID uint64, today time.Time, fields DailyMetricFields) error {
	result := r.db.WithContext(ctx).
		Model(&model.DailyMetric{}).
		Where("profile_id = ? AND date = ?", profileID, today).
		Updates(map[string]any{
			"followers_close":  fields.FollowersClose,
			"followers_delta":  fields.FollowersDelta,
			"following_close":  fields.FollowingClose,
			"following_delta":  fields.FollowingDelta,
			"media_count_close": fields.MediaCountClose,
			"media_count_delta": fields.MediaCountDelta,
			"reel_count_close": fields.ReelCountClose,
			"reel_count_delta": fields.ReelCountDelta,
			"views_growth":     fields.ViewsGrowth,
			"likes_growth":     fields.LikesGrowth,
			"comments_growth":  fields.CommentsGrowth,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "no daily metric row for today to update")
	}
	return nil
}

func (r *dailyMetricRepoImpl) GetLatestBefore(ctx context.Context, profileID uint64, date time.Time) (*model.DailyMetric, error) {
	var m model.DailyMetric
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND date < ?", profileID, date).
		Order("date DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetLatest returns the most recent DailyMetric row regardless of date,
// used to compare freshness against the Delta table for session reads.
func (r *dailyMetricRepoImpl) GetLatest(ctx context.Context, profileID uint64) (*model.DailyMetric, error) {
	var m model.DailyMetric
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("date DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
