package model

import "time"

// Profile is the identity of one tracked account on one platform. UpdatedAt
// doubles as the session-start boundary: it is only ever rewritten when a
// tracking session is opened or reassigned, never on ordinary field updates.
type Profile struct {
	ID              uint64    `gorm:"primaryKey"`
	Platform        Platform  `gorm:"type:varchar(16);not null;uniqueIndex:idx_profile_identity,priority:1"`
	Username        string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_profile_identity,priority:2"`
	OwningUserID    *uint64   `gorm:"uniqueIndex:idx_profile_identity,priority:3"`
	TrackingID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_profile_tracking_id"`
	ExternalID      string    `gorm:"type:varchar(64)"`
	DisplayName     string    `gorm:"type:varchar(191)"`
	AvatarURL       string    `gorm:"type:varchar(512)"`
	Biography       string    `gorm:"type:text"`
	ExternalLink    string    `gorm:"type:varchar(512)"`
	LastSnapshotID  *uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time `gorm:"index:idx_profile_updated_at;autoUpdateTime:false"`
}

func (Profile) TableName() string {
	return "profiles"
}
