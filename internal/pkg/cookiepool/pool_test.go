package cookiepool

import (
	"context"
	"testing"
	"time"
)

func TestCurrent_EmptyPoolReturnsNil(t *testing.T) {
	p := New("instagram", nil, time.Hour, time.Second)
	if got := p.Current(); got != nil {
		t.Fatalf("Current() on empty pool = %v, want nil", got)
	}
}

func TestCurrent_SkipsBlankCredentials(t *testing.T) {
	p := New("instagram", []string{"", "cookie-a", ""}, time.Hour, time.Second)
	cred := p.Current()
	if cred == nil || cred.Raw != "cookie-a" {
		t.Fatalf("Current() = %v, want the single non-blank credential", cred)
	}
}

func TestMarkFailure_AdvancesRotation(t *testing.T) {
	p := New("instagram", []string{"a", "b"}, time.Hour, time.Millisecond)
	first := p.Current()
	p.MarkFailure(context.Background(), "rate_limited")
	second := p.Current()
	if first.Raw == second.Raw {
		t.Fatalf("MarkFailure should rotate to the next credential, got same credential %q twice", first.Raw)
	}
}

func TestMarkFailure_HardFailsAfterThreshold(t *testing.T) {
	// Single-credential pool: rotation has nowhere else to go, so every
	// MarkFailure lands on the same credential.
	p := New("instagram", []string{"a"}, time.Hour, time.Millisecond)
	ctx := context.Background()
	for i := 0; i < hardFailThreshold; i++ {
		p.MarkFailure(ctx, "auth_failed")
	}
	cred := p.credentials[0]
	if !cred.HardFailed {
		t.Fatalf("credential should be hard-failed after %d consecutive failures, got FailureCount=%d", hardFailThreshold, cred.FailureCount)
	}
}

func TestCurrent_SkipsHardFailedCredentials(t *testing.T) {
	p := New("instagram", []string{"a", "b"}, time.Hour, time.Millisecond)
	p.credentials[0].HardFailed = true
	cred := p.Current()
	if cred == nil || cred.Raw != "b" {
		t.Fatalf("Current() should skip the hard-failed credential, got %v", cred)
	}
}

func TestCurrent_AllHardFailedReturnsNil(t *testing.T) {
	p := New("instagram", []string{"a", "b"}, time.Hour, time.Millisecond)
	p.credentials[0].HardFailed = true
	p.credentials[1].HardFailed = true
	if got := p.Current(); got != nil {
		t.Fatalf("Current() = %v, want nil when every credential is hard-failed", got)
	}
}

func TestMarkSuccess_ClearsFailureCount(t *testing.T) {
	p := New("instagram", []string{"a"}, time.Hour, time.Millisecond)
	ctx := context.Background()
	p.credentials[0].FailureCount = 2
	p.MarkSuccess(ctx)
	if p.credentials[0].FailureCount != 0 {
		t.Fatalf("FailureCount = %d after MarkSuccess, want 0", p.credentials[0].FailureCount)
	}
}

func TestAllRateLimited_RequiresEveryCredentialWithinWindow(t *testing.T) {
	p := New("instagram", []string{"a", "b"}, time.Minute, time.Millisecond)
	now := time.Now()
	p.credentials[0].FailureCount = rateLimitedThreshold
	p.credentials[0].LastFailure = now
	p.credentials[1].FailureCount = rateLimitedThreshold
	p.credentials[1].LastFailure = now
	if !p.AllRateLimited() {
		t.Fatal("AllRateLimited() = false, want true when every credential is over threshold and within the window")
	}
}

func TestAllRateLimited_FalseWhenOneCredentialRecovered(t *testing.T) {
	p := New("instagram", []string{"a", "b"}, time.Minute, time.Millisecond)
	p.credentials[0].FailureCount = rateLimitedThreshold
	p.credentials[0].LastFailure = time.Now()
	p.credentials[1].FailureCount = 0
	if p.AllRateLimited() {
		t.Fatal("AllRateLimited() = true, want false when one credential is healthy")
	}
}

func TestRunAutoReset_ClearsStaleFailures(t *testing.T) {
	p := New("instagram", []string{"a"}, 10*time.Millisecond, time.Millisecond)
	p.credentials[0].FailureCount = 5
	p.credentials[0].HardFailed = true
	p.credentials[0].LastFailure = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	p.RunAutoReset(ctx, 5*time.Millisecond)

	if p.credentials[0].FailureCount != 0 || p.credentials[0].HardFailed {
		t.Fatalf("credential should have auto-reset, got FailureCount=%d HardFailed=%v",
			p.credentials[0].FailureCount, p.credentials[0].HardFailed)
	}
}

func TestStatus_ReportsCredentialCount(t *testing.T) {
	p := New("twitter", []string{"a", "b", "c"}, time.Hour, time.Millisecond)
	s := p.Status()
	if len(s.Credentials) != 3 {
		t.Fatalf("Status().Credentials has %d entries, want 3", len(s.Credentials))
	}
	if s.Platform != "twitter" {
		t.Fatalf("Status().Platform = %q, want twitter", s.Platform)
	}
}
