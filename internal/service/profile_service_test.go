package service

import (
	"context"
	"testing"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/repository"
)

type fakeProfileRepo struct {
	byTrackingID map[string]*model.Profile
	byHandle     map[string]*model.Profile
}

func (f *fakeProfileRepo) FindByTrackingID(ctx context.Context, trackingID string) (*model.Profile, error) {
	return f.byTrackingID[trackingID], nil
}
func (f *fakeProfileRepo) FindByHandleAndOwner(ctx context.Context, platform model.Platform, username string, ownerID *uint64) (*model.Profile, error) {
	return f.byHandle[username], nil
}
func (f *fakeProfileRepo) FindByHandle(ctx context.Context, platform model.Platform, username string) (*model.Profile, error) {
	return f.byHandle[username], nil
}
func (f *fakeProfileRepo) FindByID(ctx context.Context, id uint64) (*model.Profile, error) { return nil, nil }
func (f *fakeProfileRepo) Create(ctx context.Context, profile *model.Profile) error        { return nil }
func (f *fakeProfileRepo) Update(ctx context.Context, profile *model.Profile) error        { return nil }
func (f *fakeProfileRepo) UpdateLastSnapshotID(ctx context.Context, profileID, snapshotID uint64) error {
	return nil
}
func (f *fakeProfileRepo) ListAll(ctx context.Context) ([]*model.Profile, error) { return nil, nil }

type fakeSnapshotRepo struct {
	since []*model.Snapshot
}

func (f *fakeSnapshotRepo) Insert(ctx context.Context, s *model.Snapshot) error { return nil }
func (f *fakeSnapshotRepo) GetRecent(ctx context.Context, profileID uint64, limit int) ([]*model.Snapshot, error) {
	return nil, nil
}
func (f *fakeSnapshotRepo) GetSince(ctx context.Context, profileID uint64, from time.Time) ([]*model.Snapshot, error) {
	return f.since, nil
}

type fakeDeltaRepo struct {
	since []*model.Delta
}

func (f *fakeDeltaRepo) Insert(ctx context.Context, d *model.Delta) error { return nil }
func (f *fakeDeltaRepo) GetLatest(ctx context.Context, profileID uint64) (*model.Delta, error) {
	return nil, nil
}
func (f *fakeDeltaRepo) GetSince(ctx context.Context, profileID uint64, from time.Time) ([]*model.Delta, error) {
	return f.since, nil
}

type fakeDailyMetricRepo struct {
	latest *model.DailyMetric
}

func (f *fakeDailyMetricRepo) GetByDate(ctx context.Context, profileID uint64, date time.Time) (*model.DailyMetric, error) {
	return nil, nil
}
func (f *fakeDailyMetricRepo) Insert(ctx context.Context, m *model.DailyMetric) error { return nil }
func (f *fakeDailyMetricRepo) UpdateForToday(ctx context.Context, profileID uint64, today time.Time, fields repository.DailyMetricFields) error {
	return nil
}
func (f *fakeDailyMetricRepo) GetLatestBefore(ctx context.Context, profileID uint64, date time.Time) (*model.DailyMetric, error) {
	return nil, nil
}
func (f *fakeDailyMetricRepo) GetLatest(ctx context.Context, profileID uint64) (*model.DailyMetric, error) {
	return f.latest, nil
}

type fakeReelRepo struct {
	byShortcode map[string]*model.Reel
}

func (f *fakeReelRepo) FindByShortcode(ctx context.Context, profileID uint64, shortcode string) (*model.Reel, error) {
	if f.byShortcode == nil {
		return nil, nil
	}
	return f.byShortcode[shortcode], nil
}
func (f *fakeReelRepo) ListByProfile(ctx context.Context, profileID uint64) ([]*model.Reel, error) {
	return nil, nil
}
func (f *fakeReelRepo) ListLatest(ctx context.Context, profileID uint64, limit int) ([]*model.Reel, error) {
	return nil, nil
}
func (f *fakeReelRepo) Upsert(ctx context.Context, reel *model.Reel) error { return nil }

type fakeReelMetricRepo struct {
	forReel []*model.ReelMetric
}

func (f *fakeReelMetricRepo) Insert(ctx context.Context, rm *model.ReelMetric) error { return nil }
func (f *fakeReelMetricRepo) ListForReel(ctx context.Context, reelID uint64) ([]*model.ReelMetric, error) {
	return f.forReel, nil
}

func newTestProfileService(profiles *fakeProfileRepo, snaps *fakeSnapshotRepo, deltas *fakeDeltaRepo, dm *fakeDailyMetricRepo) ProfileService {
	return NewProfileService(nil, profiles, snaps, deltas, dm, &fakeReelRepo{}, &fakeReelMetricRepo{})
}

func TestGetSession_UnknownTrackingIDReturnsNotFound(t *testing.T) {
	svc := newTestProfileService(&fakeProfileRepo{byTrackingID: map[string]*model.Profile{}}, &fakeSnapshotRepo{}, &fakeDeltaRepo{}, &fakeDailyMetricRepo{})
	_, err := svc.GetSession(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetSession with an unknown tracking id should return an error")
	}
}

func TestLatestSessionDelta_PrefersDeltaWhenFresher(t *testing.T) {
	sessionStart := time.Now().Add(-time.Hour)
	profile := &model.Profile{ID: 1, UpdatedAt: sessionStart}

	deltaTime := time.Now().Add(-10 * time.Minute)
	dm := &model.DailyMetric{ProfileID: 1, UpdatedAt: time.Now().Add(-30 * time.Minute), FollowersDelta: 5}

	svc := newTestProfileService(
		&fakeProfileRepo{},
		&fakeSnapshotRepo{},
		&fakeDeltaRepo{since: []*model.Delta{{ProfileID: 1, FollowersDiff: 42, CapturedAt: deltaTime}}},
		&fakeDailyMetricRepo{latest: dm},
	).(*profileServiceImpl)

	view, err := svc.latestSessionDelta(context.Background(), profile)
	if err != nil {
		t.Fatalf("latestSessionDelta returned error: %v", err)
	}
	if view == nil {
		t.Fatal("latestSessionDelta returned nil, want a view")
	}
	if view.Source != "delta" || view.FollowersDiff != 42 {
		t.Fatalf("latestSessionDelta = %+v, want the fresher Delta row (source=delta, followers=42)", view)
	}
}

func TestLatestSessionDelta_PrefersDailyMetricWhenFresher(t *testing.T) {
	sessionStart := time.Now().Add(-time.Hour)
	profile := &model.Profile{ID: 1, UpdatedAt: sessionStart}

	deltaTime := time.Now().Add(-40 * time.Minute)
	dm := &model.DailyMetric{ProfileID: 1, UpdatedAt: time.Now().Add(-5 * time.Minute), FollowersDelta: 7}

	svc := newTestProfileService(
		&fakeProfileRepo{},
		&fakeSnapshotRepo{},
		&fakeDeltaRepo{since: []*model.Delta{{ProfileID: 1, FollowersDiff: 42, CapturedAt: deltaTime}}},
		&fakeDailyMetricRepo{latest: dm},
	).(*profileServiceImpl)

	view, err := svc.latestSessionDelta(context.Background(), profile)
	if err != nil {
		t.Fatalf("latestSessionDelta returned error: %v", err)
	}
	if view == nil || view.Source != "daily_metric" || view.FollowersDiff != 7 {
		t.Fatalf("latestSessionDelta = %+v, want the fresher DailyMetric row (source=daily_metric, followers=7)", view)
	}
}

func TestLatestSessionDelta_DiscardsDailyMetricFromBeforeSessionStart(t *testing.T) {
	sessionStart := time.Now().Add(-time.Hour)
	profile := &model.Profile{ID: 1, UpdatedAt: sessionStart}

	// DailyMetric predates the session boundary: must not be used even
	// though no Delta row exists yet this session.
	dm := &model.DailyMetric{ProfileID: 1, UpdatedAt: sessionStart.Add(-time.Minute), FollowersDelta: 99}

	svc := newTestProfileService(
		&fakeProfileRepo{},
		&fakeSnapshotRepo{},
		&fakeDeltaRepo{},
		&fakeDailyMetricRepo{latest: dm},
	).(*profileServiceImpl)

	view, err := svc.latestSessionDelta(context.Background(), profile)
	if err != nil {
		t.Fatalf("latestSessionDelta returned error: %v", err)
	}
	if view != nil {
		t.Fatalf("latestSessionDelta = %+v, want nil when the only DailyMetric row predates the session", view)
	}
}

func TestGetReelHistory_UnknownShortcodeReturnsNotFound(t *testing.T) {
	sessionStart := time.Now().Add(-time.Hour)
	profile := &model.Profile{ID: 1, TrackingID: "track-1", UpdatedAt: sessionStart}

	profiles := &fakeProfileRepo{byTrackingID: map[string]*model.Profile{"track-1": profile}}
	svc := newTestProfileService(profiles, &fakeSnapshotRepo{}, &fakeDeltaRepo{}, &fakeDailyMetricRepo{})

	_, err := svc.GetReelHistory(context.Background(), "track-1", "missing-shortcode")
	if err == nil {
		t.Fatal("GetReelHistory should return an error for a shortcode with no matching Reel")
	}
}

func TestGetReelHistory_FiltersMetricsBeforeSessionStart(t *testing.T) {
	sessionStart := time.Now().Add(-time.Hour)
	profile := &model.Profile{ID: 1, TrackingID: "track-1", UpdatedAt: sessionStart}
	reel := &model.Reel{ID: 10, ProfileID: 1, Shortcode: "abc"}

	before := &model.ReelMetric{ReelID: 10, CapturedAt: sessionStart.Add(-time.Minute), ViewCount: 1}
	during := &model.ReelMetric{ReelID: 10, CapturedAt: sessionStart.Add(time.Minute), ViewCount: 2}

	profileRepo := &fakeProfileRepo{byTrackingID: map[string]*model.Profile{"track-1": profile}}
	svc := NewProfileService(
		nil, profileRepo, &fakeSnapshotRepo{}, &fakeDeltaRepo{}, &fakeDailyMetricRepo{},
		&fakeReelRepo{byShortcode: map[string]*model.Reel{"abc": reel}},
		&fakeReelMetricRepo{forReel: []*model.ReelMetric{before, during}},
	)

	history, err := svc.GetReelHistory(context.Background(), "track-1", "abc")
	if err != nil {
		t.Fatalf("GetReelHistory returned error: %v", err)
	}
	if len(history) != 1 || history[0].ViewCount != 2 {
		t.Fatalf("GetReelHistory returned %d metrics, want exactly the one captured during the current session", len(history))
	}
}
