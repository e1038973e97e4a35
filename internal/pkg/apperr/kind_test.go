package apperr

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestKindOf_ClassifiedError(t *testing.T) {
	err := New(KindRateLimited, "slow down")
	if got := KindOf(err); got != KindRateLimited {
		t.Fatalf("KindOf() = %q, want %q", got, KindRateLimited)
	}
}

func TestKindOf_UnclassifiedErrorDefaultsFatal(t *testing.T) {
	err := errors.New("boom")
	if got := KindOf(err); got != KindFatal {
		t.Fatalf("KindOf() = %q, want %q", got, KindFatal)
	}
}

func TestKindOf_Nil(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Fatalf("KindOf(nil) = %q, want empty", got)
	}
}

func TestIs_MatchesThroughWrap(t *testing.T) {
	inner := errors.New("connection reset")
	wrapped := Wrap(KindTransient, inner, "fetch failed")
	if !Is(wrapped, KindTransient) {
		t.Fatalf("Is() should match KindTransient on a Wrap()ed error")
	}
	if Is(wrapped, KindParse) {
		t.Fatalf("Is() should not match an unrelated Kind")
	}
}

func TestRateLimited_CarriesRetryAfter(t *testing.T) {
	err := RateLimited(30*time.Second, "try later")
	if err.Kind != KindRateLimited {
		t.Fatalf("Kind = %q, want %q", err.Kind, KindRateLimited)
	}
	if err.RetryAfter != 30*time.Second {
		t.Fatalf("RetryAfter = %v, want 30s", err.RetryAfter)
	}
}

func TestError_UnwrapReturnsUnderlying(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	wrapped := Wrap(KindTransient, inner, "scraper request failed")
	if !errors.Is(wrapped, inner) {
		t.Fatalf("errors.Is should see through Unwrap() to the underlying error")
	}
}

func TestError_StringIncludesKindAndMessage(t *testing.T) {
	err := New(KindNotFound, "profile missing")
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if !strings.Contains(msg, string(KindNotFound)) || !strings.Contains(msg, "profile missing") {
		t.Fatalf("Error() = %q, want it to include the kind and the message", msg)
	}
}
