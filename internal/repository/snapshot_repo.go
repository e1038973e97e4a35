package repository

import (
	"context"
	"time"

	"trackforge/internal/model"

	"gorm.io/gorm"
)

type SnapshotRepo interface {
	Insert(ctx context.Context, snapshot *model.Snapshot) error
	GetRecent(ctx context.Context, profileID uint64, limit int) ([]*model.Snapshot, error)
	GetSince(ctx context.Context, profileID uint64, from time.Time) ([]*model.Snapshot, error)
}

type snapshotRepoImpl struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return &snapshotRepoImpl{db: db}
}

// Insert appends a Snapshot row. Snapshots are never mutated or deleted by
// the core; this is the only write path this repo exposes.
func (r *snapshotRepoImpl) Insert(ctx context.Context, snapshot *model.Snapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// GetRecent returns up to limit Snapshots for a Profile, most recent first.
func (r *snapshotRepoImpl) GetRecent(ctx context.Context, profileID uint64, limit int) ([]*model.Snapshot, error) {
	var snaps []*model.Snapshot
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("captured_at DESC, id DESC").
		Limit(limit).
		Find(&snaps).Error
	return snaps, err
}

// GetSince returns Snapshots with captured_at >= from, ascending. Used for
// session-scoped reads.
func (r *snapshotRepoImpl) GetSince(ctx context.Context, profileID uint64, from time.Time) ([]*model.Snapshot, error) {
	var snaps []*model.Snapshot
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND captured_at >= ?", profileID, from).
		Order("captured_at ASC, id ASC").
		Find(&snaps).Error
	return snaps, err
}
