package model

import "time"

// Reel is the current-value row for one media item on (Profile, Shortcode).
// Historical values live in ReelMetric; this row only ever carries the
// latest observed state plus the deltas computed on the most recent refresh.
type Reel struct {
	ID         uint64 `gorm:"primaryKey"`
	ProfileID  uint64 `gorm:"not null;uniqueIndex:idx_reel_profile_shortcode,priority:1"`
	Shortcode  string `gorm:"type:varchar(64);not null;uniqueIndex:idx_reel_profile_shortcode,priority:2"`

	ViewCount    int `gorm:"not null;default:0"`
	LikeCount    int `gorm:"not null;default:0"`
	CommentCount int `gorm:"not null;default:0"`

	ViewsDelta    int `gorm:"not null;default:0"`
	LikesDelta    int `gorm:"not null;default:0"`
	CommentsDelta int `gorm:"not null;default:0"`

	MediaURL         string `gorm:"type:varchar(1024)"`
	MirroredMediaURL string `gorm:"type:varchar(1024)"`
	IsVideo          bool   `gorm:"not null;default:0"`
	HasVideoURL      bool   `gorm:"not null;default:0"`
	DurationSeconds  float64

	TakenAt   time.Time `gorm:"index:idx_reel_profile_taken_at"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Reel) TableName() string {
	return "reels"
}

// IsReel reports whether this media item should be treated as a reel for
// the purpose of video-related APIs: a media item may flip to video or
// acquire a video URL over time, and either signal is sufficient.
func (r Reel) IsReel() bool {
	return r.HasVideoURL || r.IsVideo
}
