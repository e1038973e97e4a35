package service

import (
	"context"
	log "log/slog"
	"sort"
	"time"

	"trackforge/internal/model"
	"trackforge/internal/pkg/apperr"
	"trackforge/internal/pkg/consts"
	"trackforge/internal/pkg/redis"
	"trackforge/internal/pkg/scraper"
	"trackforge/internal/repository"

	"github.com/google/uuid"
)

const reelWorkingSetSize = 12
const perReelFetchDelay = 2 * time.Second

// TrackingInput is what a Queue Job carries into the pipeline.
type TrackingInput struct {
	Platform   model.Platform
	Username   string
	TrackingID *string
	UserID     *uint64
}

// TrackingResult is returned to the caller's Future on success.
type TrackingResult struct {
	Profile  *model.Profile
	Snapshot *model.Snapshot
}

// TrackingPipeline is the dispatched unit for one Job: scrape, resolve,
// snapshot, diff, reconcile reels, roll up the day. It is executed
// single-threaded per Job by the Queue dispatcher, so no internal locking
// is needed.
type TrackingPipeline struct {
	clients         map[model.Platform]scraper.Client
	profileRepo     repository.ProfileRepo
	snapshotRepo    repository.SnapshotRepo
	deltaRepo       repository.DeltaRepo
	reelRepo        repository.ReelRepo
	reelMetricRepo  repository.ReelMetricRepo
	dailyMetricRepo repository.DailyMetricRepo
	replyRepo       repository.ReplyRepo
}

func NewTrackingPipeline(
	clients map[model.Platform]scraper.Client,
	profileRepo repository.ProfileRepo,
	snapshotRepo repository.SnapshotRepo,
	deltaRepo repository.DeltaRepo,
	reelRepo repository.ReelRepo,
	reelMetricRepo repository.ReelMetricRepo,
	dailyMetricRepo repository.DailyMetricRepo,
	replyRepo repository.ReplyRepo,
) *TrackingPipeline {
	return &TrackingPipeline{
		clients:         clients,
		profileRepo:     profileRepo,
		snapshotRepo:    snapshotRepo,
		deltaRepo:       deltaRepo,
		reelRepo:        reelRepo,
		reelMetricRepo:  reelMetricRepo,
		dailyMetricRepo: dailyMetricRepo,
		replyRepo:       replyRepo,
	}
}

func (p *TrackingPipeline) Run(ctx context.Context, in TrackingInput) (*TrackingResult, error) {
	client, ok := p.clients[in.Platform]
	if !ok {
		return nil, apperr.New(apperr.KindFatal, "no scraper client configured for platform "+string(in.Platform))
	}

	// Step 1: scrape profile. Any error (including RateLimited) propagates
	// untouched; the Queue is the layer that knows what to do with it.
	data, err := client.FetchProfile(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	// Step 2: resolve the Profile row.
	profile, newSession, err := p.resolveProfile(ctx, in)
	if err != nil {
		return nil, err
	}
	profile.ExternalID = data.ExternalID
	profile.DisplayName = data.DisplayName
	profile.AvatarURL = data.AvatarURL
	profile.Biography = data.Biography
	profile.ExternalLink = data.ExternalLink
	if newSession {
		profile.UpdatedAt = time.Now()
	}
	if err := p.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	// Step 3: determine baseline snapshot.
	baseline, err := p.determineBaseline(ctx, in, profile.ID)
	if err != nil {
		return nil, err
	}

	// Step 4: insert new snapshot.
	snapshot := &model.Snapshot{
		ProfileID:  profile.ID,
		Followers:  data.Followers,
		Following:  data.Following,
		MediaCount: data.MediaCount,
		ReelCount:  len(data.Media),
		Biography:  data.Biography,
		AvatarURL:  data.AvatarURL,
		RawPayload: data.RawPayload,
		CapturedAt: time.Now(),
	}
	if err := p.snapshotRepo.Insert(ctx, snapshot); err != nil {
		return nil, err
	}

	// Step 5: update Profile.last_snapshot_id.
	if err := p.profileRepo.UpdateLastSnapshotID(ctx, profile.ID, snapshot.ID); err != nil {
		log.WarnContext(ctx, "failed to update profile last_snapshot_id", "profile_id", profile.ID, "err", err)
	}

	// Step 6: write delta, only if baseline exists.
	if baseline != nil {
		delta := &model.Delta{
			ProfileID:         profile.ID,
			BaseSnapshotID:    baseline.ID,
			CompareSnapshotID: snapshot.ID,
			FollowersDiff:     snapshot.Followers - baseline.Followers,
			FollowingDiff:     snapshot.Following - baseline.Following,
			MediaCountDiff:    snapshot.MediaCount - baseline.MediaCount,
			ReelCountDiff:     snapshot.ReelCount - baseline.ReelCount,
			CapturedAt:        snapshot.CapturedAt,
		}
		if err := p.deltaRepo.Insert(ctx, delta); err != nil {
			log.WarnContext(ctx, "failed to write delta", "profile_id", profile.ID, "err", err)
		}
	}

	// Steps 7-9: reel reconciliation and per-reel persistence. Failures here
	// are logged and skipped, not fatal.
	viewsGrowth, likesGrowth, commentsGrowth := p.reconcileReels(ctx, client, profile, data)

	// Step 10: daily roll-up.
	p.rollUpDaily(ctx, profile.ID, snapshot, viewsGrowth, likesGrowth, commentsGrowth)
	if err := redis.SAdd(ctx, consts.TrackingDirtyProfilesKey, profile.ID); err != nil {
		log.WarnContext(ctx, "failed to mark profile dirty for daily analytics", "profile_id", profile.ID, "err", err)
	}

	// Reply sub-pipeline, Twitter only.
	if in.Platform == model.PlatformTwitter {
		p.syncReplies(ctx, client, profile)
	}

	return &TrackingResult{Profile: profile, Snapshot: snapshot}, nil
}

// resolveProfile resolves or creates the Profile row for this Job.
// newSession is true exactly when a tracking session boundary is being
// opened or reassigned, the only two cases that touch Profile.UpdatedAt.
func (p *TrackingPipeline) resolveProfile(ctx context.Context, in TrackingInput) (*model.Profile, bool, error) {
	if in.TrackingID != nil {
		existing, err := p.profileRepo.FindByTrackingID(ctx, *in.TrackingID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil && existing.Username == in.Username && existing.Platform == in.Platform {
			return existing, false, nil
		}

		byOwner, err := p.profileRepo.FindByHandleAndOwner(ctx, in.Platform, in.Username, in.UserID)
		if err != nil {
			return nil, false, err
		}
		if byOwner != nil {
			byOwner.TrackingID = *in.TrackingID
			return byOwner, true, nil
		}

		profile := &model.Profile{
			Platform:     in.Platform,
			Username:     in.Username,
			OwningUserID: in.UserID,
			TrackingID:   *in.TrackingID,
		}
		if err := p.profileRepo.Create(ctx, profile); err != nil {
			return nil, false, err
		}
		return profile, true, nil
	}

	existing, err := p.profileRepo.FindByHandle(ctx, in.Platform, in.Username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	profile := &model.Profile{
		Platform:     in.Platform,
		Username:     in.Username,
		OwningUserID: in.UserID,
		TrackingID:   uuid.NewString(),
	}
	if err := p.profileRepo.Create(ctx, profile); err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

// determineBaseline picks the snapshot to diff the new one against.
func (p *TrackingPipeline) determineBaseline(ctx context.Context, in TrackingInput, profileID uint64) (*model.Snapshot, error) {
	if in.TrackingID != nil {
		return nil, nil
	}

	recent, err := p.snapshotRepo.GetRecent(ctx, profileID, 2)
	if err != nil {
		return nil, err
	}
	if len(recent) == 2 {
		return recent[1], nil
	}
	if len(recent) == 1 {
		return recent[0], nil
	}
	return nil, nil
}

// reconcileReels fetches and upserts the reel working set, returning the
// run's positive-clamped growth totals for the daily roll-up.
func (p *TrackingPipeline) reconcileReels(ctx context.Context, client scraper.Client, profile *model.Profile, profileData *scraper.ProfileData) (views, likes, comments int) {
	shortcodes, err := client.ListMediaShortcodes(ctx, profile.Username)
	if err != nil {
		log.WarnContext(ctx, "reel enumeration failed, falling back to embedded list", "profile_id", profile.ID, "err", err)
		for _, m := range profileData.Media {
			shortcodes = append(shortcodes, m.Shortcode)
		}
	}
	if len(shortcodes) == 0 {
		return 0, 0, 0
	}

	persisted, err := p.reelRepo.ListByProfile(ctx, profile.ID)
	if err != nil {
		log.WarnContext(ctx, "failed to list persisted reels", "profile_id", profile.ID, "err", err)
		return 0, 0, 0
	}
	persistedByCode := make(map[string]*model.Reel, len(persisted))
	for _, r := range persisted {
		persistedByCode[r.Shortcode] = r
	}

	toFetch := make(map[string]struct{})
	for _, sc := range shortcodes {
		if _, exists := persistedByCode[sc]; !exists {
			toFetch[sc] = struct{}{}
		}
	}
	latest, err := p.reelRepo.ListLatest(ctx, profile.ID, reelWorkingSetSize)
	if err != nil {
		log.WarnContext(ctx, "failed to list latest reels", "profile_id", profile.ID, "err", err)
	}
	for _, r := range latest {
		toFetch[r.Shortcode] = struct{}{}
	}

	fetched := make([]*scraper.MediaData, 0, len(toFetch))
	first := true
	for sc := range toFetch {
		if !first {
			time.Sleep(perReelFetchDelay)
		}
		first = false

		media, err := client.FetchMedia(ctx, sc)
		if err != nil {
			log.WarnContext(ctx, "fetchMedia failed for reel, skipping", "shortcode", sc, "err", err)
			continue
		}
		fetched = append(fetched, media)
	}

	sort.SliceStable(fetched, func(i, j int) bool {
		return fetched[i].TakenAt.After(fetched[j].TakenAt)
	})
	if len(fetched) > reelWorkingSetSize {
		fetched = fetched[:reelWorkingSetSize]
	}

	for _, media := range fetched {
		prior := persistedByCode[media.Shortcode]

		var viewsDelta, likesDelta, commentsDelta int
		if prior != nil {
			viewsDelta = media.ViewCount - prior.ViewCount
			likesDelta = media.LikeCount - prior.LikeCount
			commentsDelta = media.CommentCount - prior.CommentCount
		}

		reel := &model.Reel{
			ProfileID:        profile.ID,
			Shortcode:        media.Shortcode,
			ViewCount:        media.ViewCount,
			LikeCount:        media.LikeCount,
			CommentCount:     media.CommentCount,
			ViewsDelta:       viewsDelta,
			LikesDelta:       likesDelta,
			CommentsDelta:    commentsDelta,
			MediaURL:         media.MediaURL,
			IsVideo:          media.IsVideo,
			HasVideoURL:      media.HasVideoURL,
			DurationSeconds:  float64(media.DurationSeconds),
			TakenAt:          media.TakenAt,
		}
		if prior != nil {
			reel.MirroredMediaURL = prior.MirroredMediaURL
		}
		if err := p.reelRepo.Upsert(ctx, reel); err != nil {
			log.WarnContext(ctx, "reel upsert failed", "shortcode", media.Shortcode, "err", err)
			continue
		}
		// MySQL's ON DUPLICATE KEY UPDATE only returns the affected row's id
		// via LastInsertId reliably on the insert path; re-read to get a
		// trustworthy id on both paths.
		stored, err := p.reelRepo.FindByShortcode(ctx, profile.ID, media.Shortcode)
		if err != nil || stored == nil {
			log.WarnContext(ctx, "reel re-read after upsert failed", "shortcode", media.Shortcode, "err", err)
			continue
		}

		metric := &model.ReelMetric{
			ReelID:       stored.ID,
			ViewCount:    media.ViewCount,
			LikeCount:    media.LikeCount,
			CommentCount: media.CommentCount,
			CapturedAt:   time.Now(),
		}
		if err := p.reelMetricRepo.Insert(ctx, metric); err != nil {
			log.WarnContext(ctx, "reel metric insert failed", "shortcode", media.Shortcode, "err", err)
		}

		views += clampPositive(viewsDelta)
		likes += clampPositive(likesDelta)
		comments += clampPositive(commentsDelta)
	}

	return views, likes, comments
}

func clampPositive(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// rollUpDaily updates today's row in place, or creates it by carrying
// yesterday's close forward as open.
func (p *TrackingPipeline) rollUpDaily(ctx context.Context, profileID uint64, snapshot *model.Snapshot, views, likes, comments int) {
	today := midnight(snapshot.CapturedAt)

	existing, err := p.dailyMetricRepo.GetByDate(ctx, profileID, today)
	if err != nil {
		log.WarnContext(ctx, "daily metric lookup failed", "profile_id", profileID, "err", err)
		return
	}

	if existing != nil {
		fields := repository.DailyMetricFields{
			FollowersClose:  snapshot.Followers,
			FollowersDelta:  snapshot.Followers - existing.FollowersOpen,
			FollowingClose:  snapshot.Following,
			FollowingDelta:  snapshot.Following - existing.FollowingOpen,
			MediaCountClose: snapshot.MediaCount,
			MediaCountDelta: snapshot.MediaCount - existing.MediaCountOpen,
			ReelCountClose:  snapshot.ReelCount,
			ReelCountDelta:  snapshot.ReelCount - existing.ReelCountOpen,
			ViewsGrowth:     existing.ViewsGrowth + views,
			LikesGrowth:     existing.LikesGrowth + likes,
			CommentsGrowth:  existing.CommentsGrowth + comments,
		}
		if err := p.dailyMetricRepo.UpdateForToday(ctx, profileID, today, fields); err != nil {
			log.WarnContext(ctx, "daily metric update failed", "profile_id", profileID, "err", err)
		}
		return
	}

	open := snapshot
	yesterday, err := p.dailyMetricRepo.GetLatestBefore(ctx, profileID, today)
	if err != nil {
		log.WarnContext(ctx, "daily metric yesterday lookup failed", "profile_id", profileID, "err", err)
	}

	metric := &model.DailyMetric{
		ProfileID: profileID,
		Date:      today,
	}
	if yesterday != nil {
		metric.FollowersOpen = yesterday.FollowersClose
		metric.FollowingOpen = yesterday.FollowingClose
		metric.MediaCountOpen = yesterday.MediaCountClose
		metric.ReelCountOpen = yesterday.ReelCountClose
	} else {
		metric.FollowersOpen = open.Followers
		metric.FollowingOpen = open.Following
		metric.MediaCountOpen = open.MediaCount
		metric.ReelCountOpen = open.ReelCount
	}

	metric.FollowersClose = snapshot.Followers
	metric.FollowersDelta = snapshot.Followers - metric.FollowersOpen
	metric.FollowingClose = snapshot.Following
	metric.FollowingDelta = snapshot.Following - metric.FollowingOpen
	metric.MediaCountClose = snapshot.MediaCount
	metric.MediaCountDelta = snapshot.MediaCount - metric.MediaCountOpen
	metric.ReelCountClose = snapshot.ReelCount
	metric.ReelCountDelta = snapshot.ReelCount - metric.ReelCountOpen
	metric.ViewsGrowth = views
	metric.LikesGrowth = likes
	metric.CommentsGrowth = comments

	if err := p.dailyMetricRepo.Insert(ctx, metric); err != nil && !apperr.Is(err, apperr.KindConflict) {
		log.WarnContext(ctx, "daily metric insert failed", "profile_id", profileID, "err", err)
	}
}

// syncReplies fetches and upserts replies for top-N recent reels/tweets
// with a positive comment count.
func (p *TrackingPipeline) syncReplies(ctx context.Context, client scraper.Client, profile *model.Profile) {
	reels, err := p.reelRepo.ListLatest(ctx, profile.ID, reelWorkingSetSize)
	if err != nil {
		log.WarnContext(ctx, "reply sync: failed to list reels", "profile_id", profile.ID, "err", err)
		return
	}

	for _, reel := range reels {
		if reel.CommentCount <= 0 {
			continue
		}
		replies, err := client.FetchReplies(ctx, reel.Shortcode)
		if err != nil {
			log.WarnContext(ctx, "fetchReplies failed", "tweet_id", reel.Shortcode, "err", err)
			continue
		}
		for _, r := range replies {
			row := &model.Reply{
				ProfileID:    profile.ID,
				TweetID:      reel.Shortcode,
				ReplyTweetID: r.ReplyTweetID,
				AuthorHandle: r.AuthorHandle,
				Text:         r.Text,
				LikeCount:    r.LikeCount,
				RetweetCount: r.RetweetCount,
				CapturedAt:   r.CapturedAt,
			}
			if err := p.replyRepo.Upsert(ctx, row); err != nil {
				log.WarnContext(ctx, "reply upsert failed", "reply_tweet_id", r.ReplyTweetID, "err", err)
			}
		}
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
