package service

import (
	"context"
	"testing"
	"time"

	"trackforge/internal/model"
)

type analyticsReelRepoStub struct {
	reels []*model.Reel
}

func (f *analyticsReelRepoStub) FindByShortcode(ctx context.Context, profileID uint64, shortcode string) (*model.Reel, error) {
	return nil, nil
}
func (f *analyticsReelRepoStub) ListByProfile(ctx context.Context, profileID uint64) ([]*model.Reel, error) {
	return f.reels, nil
}
func (f *analyticsReelRepoStub) ListLatest(ctx context.Context, profileID uint64, limit int) ([]*model.Reel, error) {
	return f.reels, nil
}
func (f *analyticsReelRepoStub) Upsert(ctx context.Context, reel *model.Reel) error { return nil }

type analyticsReelMetricRepoStub struct {
	byReel map[uint64][]*model.ReelMetric
}

func (f *analyticsReelMetricRepoStub) Insert(ctx context.Context, rm *model.ReelMetric) error { return nil }
func (f *analyticsReelMetricRepoStub) ListForReel(ctx context.Context, reelID uint64) ([]*model.ReelMetric, error) {
	return f.byReel[reelID], nil
}

func TestSumTodayReelGrowth_DiffsTodayAgainstLastReadingBeforeToday(t *testing.T) {
	today := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	yesterday := today.Add(-time.Hour)
	thisMorning := today.Add(time.Hour)

	reelRepo := &analyticsReelRepoStub{reels: []*model.Reel{{ID: 1, ProfileID: 9}}}
	metricRepo := &analyticsReelMetricRepoStub{byReel: map[uint64][]*model.ReelMetric{
		1: {
			{ReelID: 1, CapturedAt: yesterday, ViewCount: 100, LikeCount: 10, CommentCount: 1},
			{ReelID: 1, CapturedAt: thisMorning, ViewCount: 150, LikeCount: 8, CommentCount: 3},
		},
	}}

	svc := &dailyAnalyticsServiceImpl{reelRepo: reelRepo, reelMetricRepo: metricRepo}
	views, likes, comments, err := svc.sumTodayReelGrowth(context.Background(), 9, today)
	if err != nil {
		t.Fatalf("sumTodayReelGrowth returned error: %v", err)
	}
	if views != 50 {
		t.Errorf("views = %d, want 50", views)
	}
	if likes != 0 {
		t.Errorf("likes = %d, want 0 (negative delta clamped)", likes)
	}
	if comments != 2 {
		t.Errorf("comments = %d, want 2", comments)
	}
}

func TestSumTodayReelGrowth_SkipsReelWithNoReadingBeforeToday(t *testing.T) {
	today := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	thisMorning := today.Add(time.Hour)

	reelRepo := &analyticsReelRepoStub{reels: []*model.Reel{{ID: 1}}}
	metricRepo := &analyticsReelMetricRepoStub{byReel: map[uint64][]*model.ReelMetric{
		1: {{ReelID: 1, CapturedAt: thisMorning, ViewCount: 5}},
	}}

	svc := &dailyAnalyticsServiceImpl{reelRepo: reelRepo, reelMetricRepo: metricRepo}
	views, _, _, err := svc.sumTodayReelGrowth(context.Background(), 9, today)
	if err != nil {
		t.Fatalf("sumTodayReelGrowth returned error: %v", err)
	}
	if views != 0 {
		t.Fatalf("views = %d, want 0 when a reel's first-ever reading is today", views)
	}
}

func TestParseUint64_Valid(t *testing.T) {
	got, err := parseUint64("12345")
	if err != nil {
		t.Fatalf("parseUint64 returned error: %v", err)
	}
	if got != 12345 {
		t.Fatalf("parseUint64 = %d, want 12345", got)
	}
}

func TestParseUint64_RejectsNonNumeric(t *testing.T) {
	if _, err := parseUint64("12a45"); err == nil {
		t.Fatal("parseUint64 should reject a non-numeric string")
	}
}
