package job

import (
	"context"
	"testing"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/queue"
)

type schedulerProfileRepoStub struct {
	profiles []*model.Profile
}

func (f *schedulerProfileRepoStub) FindByTrackingID(ctx context.Context, trackingID string) (*model.Profile, error) {
	return nil, nil
}
func (f *schedulerProfileRepoStub) FindByHandleAndOwner(ctx context.Context, platform model.Platform, username string, ownerID *uint64) (*model.Profile, error) {
	return nil, nil
}
func (f *schedulerProfileRepoStub) FindByHandle(ctx context.Context, platform model.Platform, username string) (*model.Profile, error) {
	return nil, nil
}
func (f *schedulerProfileRepoStub) FindByID(ctx context.Context, id uint64) (*model.Profile, error) {
	return nil, nil
}
func (f *schedulerProfileRepoStub) Create(ctx context.Context, profile *model.Profile) error { return nil }
func (f *schedulerProfileRepoStub) Update(ctx context.Context, profile *model.Profile) error { return nil }
func (f *schedulerProfileRepoStub) UpdateLastSnapshotID(ctx context.Context, profileID, snapshotID uint64) error {
	return nil
}
func (f *schedulerProfileRepoStub) ListAll(ctx context.Context) ([]*model.Profile, error) {
	return f.profiles, nil
}

func TestSchedulerJob_EnqueuesEveryProfileNonImmediately(t *testing.T) {
	profiles := []*model.Profile{
		{Platform: model.PlatformInstagram, Username: "alice"},
		{Platform: model.PlatformTwitter, Username: "bob"},
	}
	repo := &schedulerProfileRepoStub{profiles: profiles}
	q := queue.New(time.Hour, time.Hour, func(ctx context.Context, j *queue.Job) (queue.Result, error) {
		return nil, nil
	})

	job := NewSchedulerJob(repo, q)
	job.Run()

	snap := q.Status()
	if snap.Size != 2 {
		t.Fatalf("queue size after scheduler tick = %d, want 2", snap.Size)
	}
}
