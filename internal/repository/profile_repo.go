package repository

import (
	"context"
	"errors"

	"trackforge/internal/model"

	"gorm.io/gorm"
)

type ProfileRepo interface {
	FindByTrackingID(ctx context.Context, trackingID string) (*model.Profile, error)
	FindByHandleAndOwner(ctx context.Context, platform model.Platform, username string, ownerID *uint64) (*model.Profile, error)
	FindByHandle(ctx context.Context, platform model.Platform, username string) (*model.Profile, error)
	FindByID(ctx context.Context, id uint64) (*model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, profile *model.Profile) error
	UpdateLastSnapshotID(ctx context.Context, profileID, snapshotID uint64) error
	ListAll(ctx context.Context) ([]*model.Profile, error)
}

type profileRepoImpl struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &profileRepoImpl{db: db}
}

func (r *profileRepoImpl) FindByTrackingID(ctx context.Context, trackingID string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&p).Error
	return firstOrNil(&p, err)
}

func (r *profileRepoImpl) FindByHandleAndOwner(ctx context.Context, platform model.Platform, username string, ownerID *uint64) (*model.Profile, error) {
	var p model.Profile
	q := r.db.WithContext(ctx).Where("platform = ? AND username = ?", platform, username)
	if ownerID == nil {
		q = q.Where("owning_user_id IS NULL")
	} else {
		q = q.Where("owning_user_id = ?", *ownerID)
	}
	err := q.First(&p).Error
	return firstOrNil(&p, err)
}

func (r *profileRepoImpl) FindByHandle(ctx context.Context, platform model.Platform, username string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("platform = ? AND username = ?", platform, username).
		Order("created_at ASC").
		First(&p).Error
	return firstOrNil(&p, err)
}

func (r *profileRepoImpl) FindByID(ctx context.Context, id uint64) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).First(&p, id).Error
	return firstOrNil(&p, err)
}

func (r *profileRepoImpl) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepoImpl) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepoImpl) UpdateLastSnapshotID(ctx context.Context, profileID, snapshotID uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", profileID).
		Update("last_snapshot_id", snapshotID).Error
}

func (r *profileRepoImpl) ListAll(ctx context.Context) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.db.WithContext(ctx).Find(&profiles).Error
	return profiles, err
}

func firstOrNil(p *model.Profile, err error) (*model.Profile, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
