package service

import (
	"context"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/pkg/apperr"
	"trackforge/internal/queue"
	"trackforge/internal/repository"
)

// sessionEpsilon tolerates the fact that a new snapshot's captured_at can
// be microseconds before the Profile row's updated_at is persisted, so a
// strict >= comparison against updated_at would exclude the session's own
// just-written rows.
const sessionEpsilon = time.Second

// ProfileSessionView is the session-scoped read the tracking-id endpoint
// returns: the Profile row plus whatever happened since its current
// session opened (profile.UpdatedAt), never anything from a prior owner
// or a prior TrackingID assignment.
type ProfileSessionView struct {
	Profile  *model.Profile
	Snapshot *model.Snapshot
	Delta    *DeltaView
}

// DeltaView is the synthesized delta returned alongside a session read. It
// may come from the Delta table or, if fresher, from the most recent
// DailyMetric row, per the external-interface rule that the more recent of
// the two wins.
type DeltaView struct {
	FollowersDiff  int       `json:"followers_diff"`
	FollowingDiff  int       `json:"following_diff"`
	MediaCountDiff int       `json:"media_count_diff"`
	ReelCountDiff  int       `json:"reel_count_diff"`
	CapturedAt     time.Time `json:"captured_at"`
	Source         string    `json:"source"`
}

type ProfileService interface {
	TrackNow(ctx context.Context, platform model.Platform, username string, trackingID *string, userID *uint64) (*TrackingResult, error)
	RefreshByUsername(ctx context.Context, platform model.Platform, username string) (*TrackingResult, error)
	GetSession(ctx context.Context, trackingID string) (*ProfileSessionView, error)
	ListReels(ctx context.Context, platform model.Platform, username string) ([]*model.Reel, error)
	GetReelHistory(ctx context.Context, trackingID, shortcode string) ([]*model.ReelMetric, error)
}

type profileServiceImpl struct {
	q               *queue.Queue
	profileRepo     repository.ProfileRepo
	snapshotRepo    repository.SnapshotRepo
	deltaRepo       repository.DeltaRepo
	dailyMetricRepo repository.DailyMetricRepo
	reelRepo        repository.ReelRepo
	reelMetricRepo  repository.ReelMetricRepo
}

func NewProfileService(
	q *queue.Queue,
	profileRepo repository.ProfileRepo,
	snapshotRepo repository.SnapshotRepo,
	deltaRepo repository.DeltaRepo,
	dailyMetricRepo repository.DailyMetricRepo,
	reelRepo repository.ReelRepo,
	reelMetricRepo repository.ReelMetricRepo,
) ProfileService {
	return &profileServiceImpl{
		q:               q,
		profileRepo:     profileRepo,
		snapshotRepo:    snapshotRepo,
		deltaRepo:       deltaRepo,
		dailyMetricRepo: dailyMetricRepo,
		reelRepo:        reelRepo,
		reelMetricRepo:  reelMetricRepo,
	}
}

// TrackNow enqueues an immediate Job and blocks until the Tracking
// Pipeline has run it, per the profiles-create endpoint's await contract.
func (s *profileServiceImpl) TrackNow(ctx context.Context, platform model.Platform, username string, trackingID *string, userID *uint64) (*TrackingResult, error) {
	future := s.q.Add(queue.Target{Platform: platform, Username: username}, true, trackingID, userID)
	res, err := future.Wait(ctx)
	if err != nil {
		return nil, err
	}
	result, ok := res.(*TrackingResult)
	if !ok {
		return nil, apperr.New(apperr.KindFatal, "tracking pipeline returned an unexpected result type")
	}
	return result, nil
}

func (s *profileServiceImpl) RefreshByUsername(ctx context.Context, platform model.Platform, username string) (*TrackingResult, error) {
	return s.TrackNow(ctx, platform, username, nil, nil)
}

func (s *profileServiceImpl) GetSession(ctx context.Context, trackingID string) (*ProfileSessionView, error) {
	profile, err := s.profileRepo.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "no profile with this tracking id")
	}

	view := &ProfileSessionView{Profile: profile}

	snapshots, err := s.snapshotRepo.GetSince(ctx, profile.ID, profile.UpdatedAt.Add(-sessionEpsilon))
	if err != nil {
		return nil, err
	}
	if len(snapshots) > 0 {
		view.Snapshot = snapshots[len(snapshots)-1]
	}

	delta, err := s.latestSessionDelta(ctx, profile)
	if err != nil {
		return nil, err
	}
	view.Delta = delta

	return view, nil
}

// latestSessionDelta picks whichever of the Delta table or the most recent
// DailyMetric row is fresher, per the external-interface synthesis rule,
// discarding either if it predates the current session boundary.
func (s *profileServiceImpl) latestSessionDelta(ctx context.Context, profile *model.Profile) (*DeltaView, error) {
	deltas, err := s.deltaRepo.GetSince(ctx, profile.ID, profile.UpdatedAt.Add(-sessionEpsilon))
	if err != nil {
		return nil, err
	}
	var fromDelta *model.Delta
	if len(deltas) > 0 {
		fromDelta = deltas[len(deltas)-1]
	}

	dm, err := s.dailyMetricRepo.GetLatest(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if dm != nil && dm.UpdatedAt.Before(profile.UpdatedAt) {
		dm = nil
	}

	if dm != nil && (fromDelta == nil || dm.UpdatedAt.After(fromDelta.CapturedAt)) {
		return &DeltaView{
			FollowersDiff:  dm.FollowersDelta,
			FollowingDiff:  dm.FollowingDelta,
			MediaCountDiff: dm.MediaCountDelta,
			ReelCountDiff:  dm.ReelCountDelta,
			CapturedAt:     dm.UpdatedAt,
			Source:         "daily_metric",
		}, nil
	}
	if fromDelta != nil {
		return &DeltaView{
			FollowersDiff:  fromDelta.FollowersDiff,
			FollowingDiff:  fromDelta.FollowingDiff,
			MediaCountDiff: fromDelta.MediaCountDiff,
			ReelCountDiff:  fromDelta.ReelCountDiff,
			CapturedAt:     fromDelta.CapturedAt,
			Source:         "delta",
		}, nil
	}
	return nil, nil
}

func (s *profileServiceImpl) ListReels(ctx context.Context, platform model.Platform, username string) ([]*model.Reel, error) {
	profile, err := s.profileRepo.FindByHandle(ctx, platform, username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "no profile with this handle")
	}
	return s.reelRepo.ListByProfile(ctx, profile.ID)
}

func (s *profileServiceImpl) GetReelHistory(ctx context.Context, trackingID, shortcode string) ([]*model.ReelMetric, error) {
	profile, err := s.profileRepo.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.New(apperr.KindNotFound, "no profile with this tracking id")
	}

	reel, err := s.reelRepo.FindByShortcode(ctx, profile.ID, shortcode)
	if err != nil {
		return nil, err
	}
	if reel == nil {
		return nil, apperr.New(apperr.KindNotFound, "no reel with this shortcode for this profile")
	}

	history, err := s.reelMetricRepo.ListForReel(ctx, reel.ID)
	if err != nil {
		return nil, err
	}

	sessionStart := profile.UpdatedAt.Add(-sessionEpsilon)
	scoped := make([]*model.ReelMetric, 0, len(history))
	for _, m := range history {
		if !m.CapturedAt.Before(sessionStart) {
			scoped = append(scoped, m)
		}
	}
	return scoped, nil
}
