package model

import "time"

// DailyMetric materializes one row per (Profile, calendar date). Today's
// row may be updated repeatedly; once the date rolls over the row is
// never touched again.
type DailyMetric struct {
	ID        uint64    `gorm:"primaryKey"`
	ProfileID uint64    `gorm:"not null;uniqueIndex:idx_daily_metric_profile_date,priority:1"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_metric_profile_date,priority:2"`

	FollowersOpen  int `gorm:"not null;default:0"`
	FollowersClose int `gorm:"not null;default:0"`
	FollowersDelta int `gorm:"not null;default:0"`

	FollowingOpen  int `gorm:"not null;default:0"`
	FollowingClose int `gorm:"not null;default:0"`
	FollowingDelta int `gorm:"not null;default:0"`

	MediaCountOpen  int `gorm:"not null;default:0"`
	MediaCountClose int `gorm:"not null;default:0"`
	MediaCountDelta int `gorm:"not null;default:0"`

	ReelCountOpen  int `gorm:"not null;default:0"`
	ReelCountClose int `gorm:"not null;default:0"`
	ReelCountDelta int `gorm:"not null;default:0"`

	ViewsGrowth    int `gorm:"not null;default:0"`
	LikesGrowth    int `gorm:"not null;default:0"`
	CommentsGrowth int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DailyMetric) TableName() string {
	return "daily_metrics"
}
