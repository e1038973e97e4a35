package model

import "time"

// Snapshot is an immutable point-in-time capture of a Profile's public
// counts. Rows are append-only: the core never mutates or deletes one.
type Snapshot struct {
	ID            uint64 `gorm:"primaryKey"`
	ProfileID     uint64 `gorm:"not null;index:idx_snapshot_profile_captured"`
	Followers     int    `gorm:"not null;default:0"`
	Following     int    `gorm:"not null;default:0"`
	MediaCount    int    `gorm:"not null;default:0"`
	ReelCount     int    `gorm:"not null;default:0"`
	Biography     string `gorm:"type:text"`
	AvatarURL     string `gorm:"type:varchar(512)"`
	RawPayload    string `gorm:"type:longtext"`
	CapturedAt    time.Time `gorm:"not null;index:idx_snapshot_profile_captured"`
	CreatedAt     time.Time
}

func (Snapshot) TableName() string {
	return "snapshots"
}
