// Package apperr defines the error-kind taxonomy shared by the scraper
// client, queue, tracking pipeline, and store gateway. Callers dispatch
// on Kind rather than on sentinel identity because the queue and pipeline
// need structural recovery rules (retry, re-queue, abort) that a flat map
// of sentinel errors to HTTP codes cannot express.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	// KindRateLimited: upstream asked us to back off. Queue re-queues
	// with backoff; Cookie Pool advances to the next credential.
	KindRateLimited Kind = "rate_limited"
	// KindAuthFailed: credential is bad independently of rate limiting.
	KindAuthFailed Kind = "auth_failed"
	// KindTransient: I/O or 5xx, exhausted the scraper's internal retries.
	KindTransient Kind = "transient"
	// KindParse: upstream response shape changed; never auto-retried.
	KindParse Kind = "parse"
	// KindConflict: a uniqueness collision the caller must reconcile.
	KindConflict Kind = "conflict"
	// KindNotFound: read-side only.
	KindNotFound Kind = "not_found"
	// KindFatal: unexpected; aborts the pipeline / fails the job.
	KindFatal Kind = "fatal"
)

// Error is the concrete error type carried through the pipeline. RetryAfter
// is only meaningful for KindRateLimited.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func RateLimited(retryAfter time.Duration, message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

// KindOf extracts the Kind of err, defaulting to KindFatal for errors that
// never went through this package (an unclassified error is, by
// definition, not one the pipeline knows how to recover from).
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindFatal
}

// Is reports whether the first *Error found in err's chain carries the
// given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
