package job

import (
	"context"
	log "log/slog"

	"trackforge/internal/pkg/logger"
	"trackforge/internal/service"

	"github.com/google/uuid"
)

// DailyAnalyticsJob drains the dirty-profile set on a fixed interval,
// independently of the Queue dispatcher.
type DailyAnalyticsJob struct {
	analyticsSvc service.DailyAnalyticsService
}

func NewDailyAnalyticsJob(analyticsSvc service.DailyAnalyticsService) *DailyAnalyticsJob {
	return &DailyAnalyticsJob{analyticsSvc: analyticsSvc}
}

func (j *DailyAnalyticsJob) Run() {
	traceID := "daily-analytics-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	if err := j.analyticsSvc.RefreshDirtyProfiles(ctx); err != nil {
		log.ErrorContext(ctx, "daily analytics drain failed", "err", err)
	}
}
