package model

import "time"

// Delta is the arithmetic difference between two Snapshots of the same
// Profile. Append-only; zero-valued deltas are still written (an
// unchanged run is a fact worth recording, not an omission).
type Delta struct {
	ID              uint64 `gorm:"primaryKey"`
	ProfileID       uint64 `gorm:"not null;index:idx_delta_profile_captured"`
	BaseSnapshotID  uint64 `gorm:"not null"`
	CompareSnapshotID uint64 `gorm:"not null"`
	FollowersDiff   int    `gorm:"not null;default:0"`
	FollowingDiff   int    `gorm:"not null;default:0"`
	MediaCountDiff  int    `gorm:"not null;default:0"`
	ReelCountDiff   int    `gorm:"not null;default:0"`
	CapturedAt      time.Time `gorm:"not null;index:idx_delta_profile_captured"`
	CreatedAt       time.Time
}

func (Delta) TableName() string {
	return "deltas"
}
