// Package queue implements the process-wide, single-consumer work queue:
// deduplicated Jobs, FIFO-within-priority ordering, and a dispatcher that
// enforces spacing and rate-limit backoff between runs. It generalizes a
// single-goroutine, cron-dispatched job pattern into an explicit
// timer-driven loop that also serves ad hoc immediate enqueues from the
// HTTP API.
package queue

import (
	"context"
	log "log/slog"
	"sort"
	"sync"
	"time"

	"trackforge/internal/pkg/apperr"
)

// ProcessFunc runs one Job to completion. The Tracking Pipeline satisfies
// this signature; the queue itself knows nothing about profiles or
// scraping.
type ProcessFunc func(ctx context.Context, job *Job) (Result, error)

// Snapshot is the diagnostic view returned by Status.
type Snapshot struct {
	Size                       int
	InFlight                   bool
	InFlightTarget             string
	LastDispatch               time.Time
	BaseSpacing                time.Duration
	MaxBackoff                 time.Duration
	ConsecutiveRateLimitErrors int
	PendingTargets             []string
}

// Queue is the single-consumer dispatcher. All mutable state is guarded by
// mu; dispatch runs on its own goroutine started by Run.
type Queue struct {
	mu      sync.Mutex
	jobs    []*Job
	process ProcessFunc

	baseSpacing time.Duration
	maxBackoff  time.Duration

	lastDispatch               time.Time
	consecutiveRateLimitErrors int
	lastRateLimitAt            time.Time
	dispatching                bool

	wake chan struct{}
}

func New(baseSpacing, maxBackoff time.Duration, process ProcessFunc) *Queue {
	return &Queue{
		process:     process,
		baseSpacing: baseSpacing,
		maxBackoff:  maxBackoff,
		wake:        make(chan struct{}, 1),
	}
}

// Add enqueues target, deduplicating against any non-completed Job for the
// same target. It returns the Future the caller should Wait on.
func (q *Queue) Add(target Target, immediate bool, trackingID *string, userID *uint64) *Future {
	q.mu.Lock()
	for _, j := range q.jobs {
		if j.Target.key() == target.key() {
			q.mu.Unlock()
			return j.Future
		}
	}

	job := &Job{
		Target:     target,
		Future:     newFuture(),
		AddedAt:    time.Now(),
		Immediate:  immediate,
		TrackingID: trackingID,
		UserID:     userID,
	}
	q.jobs = append(q.jobs, job)
	sortJobs(q.jobs)
	wasEmpty := len(q.jobs) == 1
	q.mu.Unlock()

	if wasEmpty || immediate {
		q.kick()
	}
	return job.Future
}

func sortJobs(jobs []*Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Immediate != jobs[j].Immediate {
			return jobs[i].Immediate
		}
		return jobs[i].AddedAt.Before(jobs[j].AddedAt)
	})
}

func (q *Queue) kick() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Kick wakes the dispatch loop early without waiting for the next timer
// tick, for the manual "process now" HTTP endpoint. Spacing and backoff
// rules still apply; this only shortens the idle wait.
func (q *Queue) Kick() {
	q.kick()
}

// Status reports the current dispatcher state for diagnostics.
func (q *Queue) Status() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Snapshot{
		Size:                       len(q.jobs),
		LastDispatch:               q.lastDispatch,
		BaseSpacing:                q.baseSpacing,
		MaxBackoff:                 q.maxBackoff,
		ConsecutiveRateLimitErrors: q.consecutiveRateLimitErrors,
	}
	for _, j := range q.jobs {
		if j.inFlight {
			s.InFlight = true
			s.InFlightTarget = j.Target.key()
			continue
		}
		s.PendingTargets = append(s.PendingTargets, j.Target.key())
	}
	return s
}

// Run drives the dispatch loop until ctx is canceled. It is meant to run on
// its own goroutine for the lifetime of the process.
func (q *Queue) Run(ctx context.Context) {
	for {
		wait := q.tick(ctx)
		if wait < 0 {
			return
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-q.wake:
			timer.Stop()
		}
	}
}

// tick attempts to dispatch the head-of-line Job, honoring spacing and
// backoff. It returns the duration to wait before trying again, or a
// negative value if ctx is already done.
func (q *Queue) tick(ctx context.Context) time.Duration {
	if ctx.Err() != nil {
		return -1
	}

	q.mu.Lock()
	if q.dispatching || len(q.jobs) == 0 {
		q.mu.Unlock()
		return q.baseSpacing
	}

	effectiveSpacing := q.effectiveSpacingLocked()
	if since := time.Since(q.lastDispatch); !q.lastDispatch.IsZero() && since < effectiveSpacing {
		deficit := effectiveSpacing - since
		q.mu.Unlock()
		return deficit
	}

	job := q.jobs[0]
	job.inFlight = true
	q.dispatching = true
	q.lastDispatch = time.Now()
	q.mu.Unlock()

	go q.run(ctx, job)
	return effectiveSpacing
}

// effectiveSpacingLocked must be called with mu held.
func (q *Queue) effectiveSpacingLocked() time.Duration {
	if q.consecutiveRateLimitErrors == 0 {
		return q.baseSpacing
	}
	if time.Since(q.lastRateLimitAt) > time.Hour {
		q.consecutiveRateLimitErrors = 0
		return q.baseSpacing
	}
	spacing := q.baseSpacing
	for i := 0; i < q.consecutiveRateLimitErrors; i++ {
		spacing *= 2
		if spacing >= q.maxBackoff {
			return q.maxBackoff
		}
	}
	return spacing
}

func (q *Queue) run(ctx context.Context, job *Job) {
	result, err := q.process(ctx, job)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.dispatching = false
	job.inFlight = false

	if err != nil && apperr.Is(err, apperr.KindRateLimited) {
		q.consecutiveRateLimitErrors++
		q.lastRateLimitAt = time.Now()
		log.WarnContext(ctx, "queue job rate limited, re-queued", "target", job.Target.key(), "consecutive", q.consecutiveRateLimitErrors)
		sortJobs(q.jobs)
		q.kick()
		return
	}

	q.consecutiveRateLimitErrors = 0
	q.removeLocked(job)
	job.Future.settle(result, err)
	q.kick()
}

func (q *Queue) removeLocked(job *Job) {
	for i, j := range q.jobs {
		if j == job {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return
		}
	}
}
