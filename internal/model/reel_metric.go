package model

import "time"

// ReelMetric is an append-only historical snapshot of a Reel's metrics
// taken on one tracking run. Never updated or deleted.
type ReelMetric struct {
	ID           uint64    `gorm:"primaryKey"`
	ReelID       uint64    `gorm:"not null;index:idx_reel_metric_reel_captured"`
	ViewCount    int       `gorm:"not null;default:0"`
	LikeCount    int       `gorm:"not null;default:0"`
	CommentCount int       `gorm:"not null;default:0"`
	CapturedAt   time.Time `gorm:"not null;index:idx_reel_metric_reel_captured"`
	CreatedAt    time.Time
}

func (ReelMetric) TableName() string {
	return "reel_metrics"
}
