package service

import (
	"context"
	log "log/slog"
	"strconv"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/pkg/apperr"
	"trackforge/internal/pkg/consts"
	"trackforge/internal/pkg/redis"
	"trackforge/internal/repository"

	"github.com/google/uuid"
)

// DailyAnalyticsService is the periodic runner that walks Profiles
// independently of any tracking Job and materializes
// today's DailyMetric row from Snapshot and ReelMetric history, obeying
// the same today-only update rule the pipeline does. Grounded on the
// teacher's internal/job/user_metric_job.go dirty-set drain (rename the
// set, read its members, process, delete the processing copy).
type DailyAnalyticsService interface {
	RefreshDirtyProfiles(ctx context.Context) error
	RefreshProfile(ctx context.Context, profileID uint64) error
}

type dailyAnalyticsServiceImpl struct {
	profileRepo     repository.ProfileRepo
	snapshotRepo    repository.SnapshotRepo
	reelRepo        repository.ReelRepo
	reelMetricRepo  repository.ReelMetricRepo
	dailyMetricRepo repository.DailyMetricRepo
}

func NewDailyAnalyticsService(
	profileRepo repository.ProfileRepo,
	snapshotRepo repository.SnapshotRepo,
	reelRepo repository.ReelRepo,
	reelMetricRepo repository.ReelMetricRepo,
	dailyMetricRepo repository.DailyMetricRepo,
) DailyAnalyticsService {
	return &dailyAnalyticsServiceImpl{
		profileRepo:     profileRepo,
		snapshotRepo:    snapshotRepo,
		reelRepo:        reelRepo,
		reelMetricRepo:  reelMetricRepo,
		dailyMetricRepo: dailyMetricRepo,
	}
}

func (s *dailyAnalyticsServiceImpl) RefreshDirtyProfiles(ctx context.Context) error {
	lockValue := uuid.NewString()
	acquired, err := redis.TryLock(ctx, consts.DailyAnalyticsLock, lockValue, time.Minute, 1)
	if err != nil {
		return err
	}
	if !acquired {
		// Another replica is already draining; nothing to do here.
		return nil
	}
	defer redis.UnLock(ctx, consts.DailyAnalyticsLock, lockValue)

	processingKey := consts.TrackingDirtyProfilesKey + ":processing:" + uuid.NewString()
	if err := redis.Rename(ctx, consts.TrackingDirtyProfilesKey, processingKey); err != nil {
		// Rename fails when the source key doesn't exist, i.e. nothing is
		// dirty; that is the common case and not an error worth logging.
		return nil
	}

	ids, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		return err
	}

	for _, raw := range ids {
		profileID, convErr := parseUint64(raw)
		if convErr != nil {
			log.WarnContext(ctx, "skipping malformed dirty profile id", "raw", raw)
			continue
		}
		if err := s.RefreshProfile(ctx, profileID); err != nil {
			log.WarnContext(ctx, "daily analytics refresh failed", "profile_id", profileID, "err", err)
		}
	}

	return redis.DeleteKey(ctx, processingKey)
}

func (s *dailyAnalyticsServiceImpl) RefreshProfile(ctx context.Context, profileID uint64) error {
	recent, err := s.snapshotRepo.GetRecent(ctx, profileID, 1)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}
	latest := recent[0]
	today := midnight(latest.CapturedAt)

	views, likes, comments, err := s.sumTodayReelGrowth(ctx, profileID, today)
	if err != nil {
		log.WarnContext(ctx, "failed to sum reel growth for daily analytics", "profile_id", profileID, "err", err)
	}

	existing, err := s.dailyMetricRepo.GetByDate(ctx, profileID, today)
	if err != nil {
		return err
	}

	if existing != nil {
		return s.dailyMetricRepo.UpdateForToday(ctx, profileID, today, repository.DailyMetricFields{
			FollowersClose:  latest.Followers,
			FollowersDelta:  latest.Followers - existing.FollowersOpen,
			FollowingClose:  latest.Following,
			FollowingDelta:  latest.Following - existing.FollowingOpen,
			MediaCountClose: latest.MediaCount,
			MediaCountDelta: latest.MediaCount - existing.MediaCountOpen,
			ReelCountClose:  latest.ReelCount,
			ReelCountDelta:  latest.ReelCount - existing.ReelCountOpen,
			ViewsGrowth:     views,
			LikesGrowth:     likes,
			CommentsGrowth:  comments,
		})
	}

	yesterday, err := s.dailyMetricRepo.GetLatestBefore(ctx, profileID, today)
	if err != nil {
		return err
	}

	metric := &model.DailyMetric{ProfileID: profileID, Date: today}
	if yesterday != nil {
		metric.FollowersOpen = yesterday.FollowersClose
		metric.FollowingOpen = yesterday.FollowingClose
		metric.MediaCountOpen = yesterday.MediaCountClose
		metric.ReelCountOpen = yesterday.ReelCountClose
	} else {
		metric.FollowersOpen = latest.Followers
		metric.FollowingOpen = latest.Following
		metric.MediaCountOpen = latest.MediaCount
		metric.ReelCountOpen = latest.ReelCount
	}
	metric.FollowersClose = latest.Followers
	metric.FollowersDelta = latest.Followers - metric.FollowersOpen
	metric.FollowingClose = latest.Following
	metric.FollowingDelta = latest.Following - metric.FollowingOpen
	metric.MediaCountClose = latest.MediaCount
	metric.MediaCountDelta = latest.MediaCount - metric.MediaCountOpen
	metric.ReelCountClose = latest.ReelCount
	metric.ReelCountDelta = latest.ReelCount - metric.ReelCountOpen
	metric.ViewsGrowth = views
	metric.LikesGrowth = likes
	metric.CommentsGrowth = comments

	err = s.dailyMetricRepo.Insert(ctx, metric)
	if err != nil && apperr.Is(err, apperr.KindConflict) {
		// Lost a race with the pipeline's own roll-up; its row is as good.
		return nil
	}
	return err
}

// sumTodayReelGrowth recomputes the day's view/like/comment growth from
// ReelMetric history: for every reel, diff the latest reading taken today
// against the last reading taken before today (or treat it as zero growth
// if today's reading is the reel's first ever).
func (s *dailyAnalyticsServiceImpl) sumTodayReelGrowth(ctx context.Context, profileID uint64, today time.Time) (views, likes, comments int, err error) {
	reels, err := s.reelRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return 0, 0, 0, err
	}

	for _, reel := range reels {
		history, err := s.reelMetricRepo.ListForReel(ctx, reel.ID)
		if err != nil {
			log.WarnContext(ctx, "failed to list reel metric history", "reel_id", reel.ID, "err", err)
			continue
		}
		if len(history) == 0 {
			continue
		}

		var beforeToday, latestToday *model.ReelMetric
		for _, m := range history {
			if m.CapturedAt.Before(today) {
				beforeToday = m
				continue
			}
			latestToday = m
		}
		if latestToday == nil {
			continue
		}
		if beforeToday == nil {
			continue
		}

		views += clampPositive(latestToday.ViewCount - beforeToday.ViewCount)
		likes += clampPositive(latestToday.LikeCount - beforeToday.LikeCount)
		comments += clampPositive(latestToday.CommentCount - beforeToday.CommentCount)
	}

	return views, likes, comments, nil
}

func parseUint64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.KindParse, "not a numeric profile id")
	}
	return v, nil
}
