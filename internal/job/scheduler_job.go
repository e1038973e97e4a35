package job

import (
	"context"
	log "log/slog"

	"trackforge/internal/pkg/logger"
	"trackforge/internal/queue"
	"trackforge/internal/repository"

	"github.com/google/uuid"
)

// SchedulerJob enumerates every tracked Profile and enqueues a non-immediate
// Job for each, satisfying cron.Job so robfig/cron can dispatch it directly
// on either the daily or refresh schedule. It never waits for the Queue to
// drain; it only calls Queue.Add.
type SchedulerJob struct {
	profileRepo repository.ProfileRepo
	queue       *queue.Queue
}

func NewSchedulerJob(profileRepo repository.ProfileRepo, q *queue.Queue) *SchedulerJob {
	return &SchedulerJob{profileRepo: profileRepo, queue: q}
}

func (s *SchedulerJob) Run() {
	traceID := "sched-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	profiles, err := s.profileRepo.ListAll(ctx)
	if err != nil {
		log.ErrorContext(ctx, "scheduler tick failed to list profiles", "err", err)
		return
	}

	for _, p := range profiles {
		target := queue.Target{Platform: p.Platform, Username: p.Username}
		s.queue.Add(target, false, nil, nil)
	}

	log.InfoContext(ctx, "scheduler tick enqueued profiles", "count", len(profiles))
}
