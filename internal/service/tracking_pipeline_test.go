package service

import (
	"context"
	"testing"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/pkg/scraper"
)

type fakeScraperClient struct {
	shortcodes []string
	media      map[string]*scraper.MediaData
	mediaErr   map[string]error
}

func (c *fakeScraperClient) FetchProfile(ctx context.Context, username string) (*scraper.ProfileData, error) {
	return &scraper.ProfileData{Username: username}, nil
}
func (c *fakeScraperClient) FetchMedia(ctx context.Context, shortcode string) (*scraper.MediaData, error) {
	if err, ok := c.mediaErr[shortcode]; ok {
		return nil, err
	}
	return c.media[shortcode], nil
}
func (c *fakeScraperClient) ListMediaShortcodes(ctx context.Context, username string) ([]string, error) {
	return c.shortcodes, nil
}
func (c *fakeScraperClient) FetchReplies(ctx context.Context, tweetID string) ([]scraper.Reply, error) {
	return nil, nil
}

type fakeReconcileReelRepo struct {
	persisted []*model.Reel
	upserted  []*model.Reel
	byCode    map[string]*model.Reel
}

func (f *fakeReconcileReelRepo) FindByShortcode(ctx context.Context, profileID uint64, shortcode string) (*model.Reel, error) {
	if r, ok := f.byCode[shortcode]; ok {
		return r, nil
	}
	for _, r := range f.upserted {
		if r.Shortcode == shortcode {
			return r, nil
		}
	}
	return nil, nil
}
func (f *fakeReconcileReelRepo) ListByProfile(ctx context.Context, profileID uint64) ([]*model.Reel, error) {
	return f.persisted, nil
}
func (f *fakeReconcileReelRepo) ListLatest(ctx context.Context, profileID uint64, limit int) ([]*model.Reel, error) {
	return f.persisted, nil
}
func (f *fakeReconcileReelRepo) Upsert(ctx context.Context, reel *model.Reel) error {
	reel.ID = uint64(len(f.upserted) + 1)
	f.upserted = append(f.upserted, reel)
	return nil
}

type fakeReconcileReelMetricRepo struct {
	inserted []*model.ReelMetric
}

func (f *fakeReconcileReelMetricRepo) Insert(ctx context.Context, rm *model.ReelMetric) error {
	f.inserted = append(f.inserted, rm)
	return nil
}
func (f *fakeReconcileReelMetricRepo) ListForReel(ctx context.Context, reelID uint64) ([]*model.ReelMetric, error) {
	return nil, nil
}

func TestReconcileReels_ComputesPositiveClampedGrowth(t *testing.T) {
	client := &fakeScraperClient{
		shortcodes: []string{"abc"},
		media: map[string]*scraper.MediaData{
			"abc": {Shortcode: "abc", ViewCount: 100, LikeCount: 10, CommentCount: 2, TakenAt: time.Now()},
		},
	}
	reelRepo := &fakeReconcileReelRepo{
		persisted: []*model.Reel{{ID: 5, ProfileID: 1, Shortcode: "abc", ViewCount: 80, LikeCount: 12, CommentCount: 2}},
		byCode:    map[string]*model.Reel{"abc": {ID: 5, ProfileID: 1, Shortcode: "abc", ViewCount: 80, LikeCount: 12, CommentCount: 2}},
	}
	metricRepo := &fakeReconcileReelMetricRepo{}

	p := &TrackingPipeline{reelRepo: reelRepo, reelMetricRepo: metricRepo}
	profile := &model.Profile{ID: 1, Username: "alice"}
	data := &scraper.ProfileData{}

	views, likes, comments := p.reconcileReels(context.Background(), client, profile, data)

	// views grew 100-80=20 (positive, kept); likes dropped 10-12=-2
	// (clamped to 0); comments unchanged (0).
	if views != 20 {
		t.Fatalf("views growth = %d, want 20", views)
	}
	if likes != 0 {
		t.Fatalf("likes growth = %d, want 0 (negative delta clamped)", likes)
	}
	if comments != 0 {
		t.Fatalf("comments growth = %d, want 0", comments)
	}
	if len(metricRepo.inserted) != 1 {
		t.Fatalf("expected one ReelMetric to be inserted, got %d", len(metricRepo.inserted))
	}
}

func TestReconcileReels_SkipsFetchMediaFailuresWithoutAborting(t *testing.T) {
	client := &fakeScraperClient{
		shortcodes: []string{"good", "bad"},
		media: map[string]*scraper.MediaData{
			"good": {Shortcode: "good", ViewCount: 50, TakenAt: time.Now()},
		},
		mediaErr: map[string]error{
			"bad": context.DeadlineExceeded,
		},
	}
	reelRepo := &fakeReconcileReelRepo{byCode: map[string]*model.Reel{}}
	metricRepo := &fakeReconcileReelMetricRepo{}

	p := &TrackingPipeline{reelRepo: reelRepo, reelMetricRepo: metricRepo}
	profile := &model.Profile{ID: 1, Username: "alice"}

	p.reconcileReels(context.Background(), client, profile, &scraper.ProfileData{})

	if len(reelRepo.upserted) != 1 || reelRepo.upserted[0].Shortcode != "good" {
		t.Fatalf("expected only the successfully fetched reel to be upserted, got %v", reelRepo.upserted)
	}
}

func TestReconcileReels_NoShortcodesReturnsZero(t *testing.T) {
	client := &fakeScraperClient{}
	reelRepo := &fakeReconcileReelRepo{}
	p := &TrackingPipeline{reelRepo: reelRepo, reelMetricRepo: &fakeReconcileReelMetricRepo{}}
	profile := &model.Profile{ID: 1, Username: "alice"}

	views, likes, comments := p.reconcileReels(context.Background(), client, profile, &scraper.ProfileData{})
	if views != 0 || likes != 0 || comments != 0 {
		t.Fatalf("reconcileReels with no shortcodes = (%d,%d,%d), want all zero", views, likes, comments)
	}
}

func TestClampPositive(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0}, {0, 0}, {7, 7},
	}
	for _, c := range cases {
		if got := clampPositive(c.in); got != c.want {
			t.Errorf("clampPositive(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMidnight_TruncatesTimeOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 5, 14, 32, 10, 0, time.UTC)
	got := midnight(ts)
	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("midnight(%v) = %v, want %v", ts, got, want)
	}
}
