package job

import (
	"context"
	"errors"
	"testing"
)

type fakeDailyAnalyticsService struct {
	refreshDirtyCalled bool
	refreshDirtyErr    error
}

func (f *fakeDailyAnalyticsService) RefreshDirtyProfiles(ctx context.Context) error {
	f.refreshDirtyCalled = true
	return f.refreshDirtyErr
}
func (f *fakeDailyAnalyticsService) RefreshProfile(ctx context.Context, profileID uint64) error {
	return nil
}

func TestDailyAnalyticsJob_RunCallsRefreshDirtyProfiles(t *testing.T) {
	svc := &fakeDailyAnalyticsService{}
	j := NewDailyAnalyticsJob(svc)
	j.Run()
	if !svc.refreshDirtyCalled {
		t.Fatal("Run() should call RefreshDirtyProfiles")
	}
}

func TestDailyAnalyticsJob_RunSwallowsError(t *testing.T) {
	svc := &fakeDailyAnalyticsService{refreshDirtyErr: errors.New("redis unavailable")}
	j := NewDailyAnalyticsJob(svc)
	// Should not panic even though RefreshDirtyProfiles fails; the job logs
	// and returns, leaving the next tick to try again.
	j.Run()
}
