package queue

import (
	"context"
	"time"

	"trackforge/internal/model"
)

// Target identifies the profile a Job will track.
type Target struct {
	Platform model.Platform
	Username string
}

func (t Target) key() string {
	return string(t.Platform) + ":" + t.Username
}

// Result is whatever the Tracking Pipeline hands back on success; the
// queue never inspects it, only relays it through the Job's Future.
type Result any

// Future is a promise-like completion handle a caller can block on.
type Future struct {
	done chan struct{}
	res  Result
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Wait blocks until the Job settles or ctx is canceled.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) settle(res Result, err error) {
	f.res, f.err = res, err
	close(f.done)
}

// Job is one unit of tracking work. TrackingID and UserID are optional,
// caller-supplied hints the Tracking Pipeline uses to resolve a Profile row.
type Job struct {
	Target     Target
	Future     *Future
	AddedAt    time.Time
	Immediate  bool
	TrackingID *string
	UserID     *uint64

	inFlight bool
}
