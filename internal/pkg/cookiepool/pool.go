// Package cookiepool holds the rotating set of scraping credentials for one
// platform. It is intentionally process-local: state mutation happens
// either on the dispatcher goroutine or the auto-reset ticker, so a single
// mutex is adequate — there is no cross-instance coordination requirement.
package cookiepool

import (
	"context"
	log "log/slog"
	"sync"
	"time"

	"trackforge/internal/pkg/consts"
	"trackforge/internal/pkg/redis"

	"github.com/goccy/go-json"
)

const hardFailThreshold = 3
const rateLimitedThreshold = 2

// Credential is one cookie/token bundle used to authenticate scraping calls.
type Credential struct {
	Raw          string
	FailureCount int
	LastFailure  time.Time
	LastSwitch   time.Time
	HardFailed   bool
}

// Status is the diagnostic snapshot returned by Pool.Status.
type Status struct {
	Platform        string          `json:"platform"`
	CurrentIndex    int             `json:"current_index"`
	Credentials     []CredentialStat `json:"credentials"`
}

type CredentialStat struct {
	Index        int       `json:"index"`
	FailureCount int       `json:"failure_count"`
	HardFailed   bool      `json:"hard_failed"`
	LastFailure  time.Time `json:"last_failure,omitempty"`
}

// Pool rotates through an ordered list of Credentials for one platform.
type Pool struct {
	mu           sync.Mutex
	platform     string
	credentials  []*Credential
	current      int
	resetWindow  time.Duration
	switchDelay  time.Duration
	redisMirror  bool
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithRedisMirror mirrors failure counters to Redis under a per-platform key
// so multiple API replicas can observe rotation state, grounded on the
// teacher's redis.SetWithExpiration idiom.
func WithRedisMirror(enabled bool) Option {
	return func(p *Pool) { p.redisMirror = enabled }
}

func New(platform string, rawCredentials []string, resetWindow, switchDelay time.Duration, opts ...Option) *Pool {
	creds := make([]*Credential, 0, len(rawCredentials))
	for _, raw := range rawCredentials {
		if raw == "" {
			continue
		}
		creds = append(creds, &Credential{Raw: raw})
	}
	p := &Pool{
		platform:    platform,
		credentials: creds,
		resetWindow: resetWindow,
		switchDelay: switchDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Current returns the active credential, or nil if the pool is empty or
// every credential is currently hard-failed.
func (p *Pool) Current() *Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked()
}

func (p *Pool) currentLocked() *Credential {
	if len(p.credentials) == 0 {
		return nil
	}
	if !p.credentials[p.current].HardFailed {
		return p.credentials[p.current]
	}
	for i := range p.credentials {
		idx := (p.current + i) % len(p.credentials)
		if !p.credentials[idx].HardFailed {
			p.current = idx
			return p.credentials[idx]
		}
	}
	return nil
}

// MarkFailure increments the current credential's failure count, marks it
// hard-failed once the threshold is reached, advances rotation to the next
// credential on every call (Current skips hard-failed ones), and returns a
// wait duration the caller should honor before retrying. The reason argument is not interpreted here; the scraper client
// classifies upstream responses and calls in.
func (p *Pool) MarkFailure(ctx context.Context, reason string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred := p.currentLocked()
	if cred == nil {
		return p.switchDelay
	}

	cred.FailureCount++
	cred.LastFailure = time.Now()
	log.WarnContext(ctx, "cookie pool credential failure",
		log.String("platform", p.platform),
		log.String("reason", reason),
		log.Int("failure_count", cred.FailureCount),
	)

	if cred.FailureCount >= hardFailThreshold {
		cred.HardFailed = true
	}

	sinceSwitch := time.Since(cred.LastSwitch)
	cred.LastSwitch = time.Now()
	p.advanceLocked()
	p.mirror(ctx)

	if sinceSwitch < p.switchDelay {
		return p.switchDelay
	}
	return p.switchDelay
}

func (p *Pool) advanceLocked() {
	if len(p.credentials) == 0 {
		return
	}
	p.current = (p.current + 1) % len(p.credentials)
}

// MarkSuccess clears the current credential's failure count.
func (p *Pool) MarkSuccess(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cred := p.currentLocked()
	if cred == nil {
		return
	}
	cred.FailureCount = 0
	p.mirror(ctx)
}

// AllRateLimited reports whether every credential currently has at least
// rateLimitedThreshold failures within the reset window.
func (p *Pool) AllRateLimited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.credentials) == 0 {
		return false
	}
	for _, c := range p.credentials {
		if c.FailureCount < rateLimitedThreshold {
			return false
		}
		if time.Since(c.LastFailure) >= p.resetWindow {
			return false
		}
	}
	return true
}

// RetryAfter returns the max over credentials of (reset window - time since
// last failure), i.e. how long until the least-stale credential recovers.
func (p *Pool) RetryAfter() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	var max time.Duration
	for _, c := range p.credentials {
		remaining := p.resetWindow - time.Since(c.LastFailure)
		if remaining > max {
			max = remaining
		}
	}
	return max
}

// Status returns a diagnostic snapshot for the HTTP surface.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{Platform: p.platform, CurrentIndex: p.current}
	for i, c := range p.credentials {
		s.Credentials = append(s.Credentials, CredentialStat{
			Index:        i,
			FailureCount: c.FailureCount,
			HardFailed:   c.HardFailed,
			LastFailure:  c.LastFailure,
		})
	}
	return s
}

// RunAutoReset starts the background recovery ticker described in spec
// §4.1: every interval, clear failure state on any credential whose last
// failure predates the reset window. It blocks until ctx is canceled.
func (p *Pool) RunAutoReset(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.autoReset(ctx)
		}
	}
}

func (p *Pool) autoReset(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	for _, c := range p.credentials {
		if c.FailureCount == 0 {
			continue
		}
		if now.Sub(c.LastFailure) >= p.resetWindow {
			log.InfoContext(ctx, "cookie pool auto-reset credential",
				log.String("platform", p.platform))
			c.FailureCount = 0
			c.HardFailed = false
		}
	}
	p.mirror(ctx)
}

// mirror best-effort-writes the pool's failure state to Redis so other
// process replicas can observe it; failures here are logged, not returned,
// since the pool itself remains correct without the mirror.
func (p *Pool) mirror(ctx context.Context) {
	if !p.redisMirror {
		return
	}
	status := Status{Platform: p.platform, CurrentIndex: p.current}
	for i, c := range p.credentials {
		status.Credentials = append(status.Credentials, CredentialStat{
			Index: i, FailureCount: c.FailureCount, HardFailed: c.HardFailed, LastFailure: c.LastFailure,
		})
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return
	}
	key := consts.CookiePoolStatusKeyPrefix + p.platform + ":status"
	if err := redis.SetWithExpiration(ctx, key, string(payload), 10*time.Minute); err != nil {
		log.WarnContext(ctx, "cookie pool redis mirror failed", log.Any("err", err))
	}
}
