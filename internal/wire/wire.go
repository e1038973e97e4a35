package wire

import (
	"context"
	"time"

	"trackforge/internal/api"
	"trackforge/internal/api/config"
	"trackforge/internal/api/handler"
	"trackforge/internal/job"
	"trackforge/internal/model"
	"trackforge/internal/pkg/cookiepool"
	"trackforge/internal/pkg/cron"
	"trackforge/internal/pkg/scraper"
	"trackforge/internal/queue"
	"trackforge/internal/repository"
	"trackforge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// ApplicationContainer bundles every top-level component main.go needs to
// run and shut down.
type ApplicationContainer struct {
	Router                  *gin.Engine
	DB                      *gorm.DB
	Queue                   *queue.Queue
	CronMgr                 *cron.Manager
	DailyAnalyticsJob       *job.DailyAnalyticsJob
	CookiePools             []*cookiepool.Pool
	CredentialResetInterval time.Duration
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	profileRepo := repository.NewProfileRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)
	deltaRepo := repository.NewDeltaRepo(db)
	reelRepo := repository.NewReelRepo(db)
	reelMetricRepo := repository.NewReelMetricRepo(db)
	dailyMetricRepo := repository.NewDailyMetricRepo(db)
	replyRepo := repository.NewReplyRepo(db)

	instagramPool := cookiepool.New(
		string(model.PlatformInstagram),
		credentialList(cfg.Scraper.Instagram),
		cfg.Scraper.ResetWindow(),
		cfg.Scraper.SwitchDelay(),
		cookiepool.WithRedisMirror(true),
	)
	twitterPool := cookiepool.New(
		string(model.PlatformTwitter),
		credentialList(cfg.Scraper.Twitter),
		cfg.Scraper.ResetWindow(),
		cfg.Scraper.SwitchDelay(),
		cookiepool.WithRedisMirror(true),
	)

	clients := map[model.Platform]scraper.Client{
		model.PlatformInstagram: scraper.NewInstagramClient(instagramPool, cfg.Scraper.HTTPTimeout()),
		model.PlatformTwitter:   scraper.NewTwitterClient(twitterPool, cfg.Scraper.HTTPTimeout()),
	}

	pipeline := service.NewTrackingPipeline(
		clients,
		profileRepo,
		snapshotRepo,
		deltaRepo,
		reelRepo,
		reelMetricRepo,
		dailyMetricRepo,
		replyRepo,
	)

	q := queue.New(cfg.Queue.BaseSpacing(), cfg.Queue.MaxBackoff(), func(ctx context.Context, j *queue.Job) (queue.Result, error) {
		return pipeline.Run(ctx, service.TrackingInput{
			Platform:   j.Target.Platform,
			Username:   j.Target.Username,
			TrackingID: j.TrackingID,
			UserID:     j.UserID,
		})
	})

	dailyAnalyticsSvc := service.NewDailyAnalyticsService(profileRepo, snapshotRepo, reelRepo, reelMetricRepo, dailyMetricRepo)
	dailyAnalyticsJob := job.NewDailyAnalyticsJob(dailyAnalyticsSvc)

	schedulerJob := job.NewSchedulerJob(profileRepo, q)

	tz, err := time.LoadLocation(cfg.Cron.TZ)
	if err != nil {
		tz = time.UTC
	}
	cronMgr := cron.NewCronManager(schedulerJob, cfg.Cron.DailySchedule, cfg.Cron.RefreshSchedule, tz)

	profileSvc := service.NewProfileService(q, profileRepo, snapshotRepo, deltaRepo, dailyMetricRepo, reelRepo, reelMetricRepo)

	handlers := &api.HandlersGroup{
		ProfileHandler: handler.NewProfileHandler(profileSvc),
		QueueHandler:   handler.NewQueueHandler(q),
		CronHandler:    handler.NewCronHandler(cronMgr),
	}

	router := api.SetupRouter(handlers)

	return &ApplicationContainer{
		Router:                  router,
		DB:                      db,
		Queue:                   q,
		CronMgr:                 cronMgr,
		DailyAnalyticsJob:       dailyAnalyticsJob,
		CookiePools:             []*cookiepool.Pool{instagramPool, twitterPool},
		CredentialResetInterval: credentialResetInterval,
	}, nil
}

// credentialResetInterval is how often each Cookie Pool checks for
// credentials eligible for auto-reset, independent of the configured
// reset window itself.
const credentialResetInterval = 5 * time.Minute

// credentialList merges the primary credential, the numbered extras, and
// any JSON-encoded array into one ordered list for cookiepool.New.
func credentialList(src config.CredentialSourceConfig) []string {
	creds := make([]string, 0, len(src.Extra)+2)
	if src.Primary != "" {
		creds = append(creds, src.Primary)
	}
	creds = append(creds, src.Extra...)

	if src.JSON != "" {
		var extra []string
		if err := json.Unmarshal([]byte(src.JSON), &extra); err == nil {
			creds = append(creds, extra...)
		}
	}
	return creds
}
