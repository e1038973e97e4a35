package scraper

import (
	"net/http"
	"strings"
	"time"

	"trackforge/internal/pkg/apperr"

	"github.com/pkg/errors"
)

// classifyResponse maps a completed HTTP response (status + body snippet)
// to an apperr.Kind. retryAfter is only meaningful for KindRateLimited.
func classifyResponse(status int, body string, retryAfter time.Duration) error {
	lower := strings.ToLower(body)
	switch {
	case status >= 429 && status < 500, strings.Contains(lower, "wait a few minutes"):
		return apperr.RateLimited(retryAfter, "upstream signaled rate limit")
	case status == http.StatusUnauthorized:
		if strings.Contains(lower, "rate") || strings.Contains(lower, "wait a few minutes") {
			return apperr.RateLimited(retryAfter, "unauthorized with rate-limit marker")
		}
		return apperr.New(apperr.KindAuthFailed, "credential rejected by upstream")
	case status == http.StatusForbidden:
		return apperr.New(apperr.KindAuthFailed, "credential forbidden by upstream")
	case status >= 500:
		return apperr.New(apperr.KindTransient, "upstream server error")
	case status >= 400:
		return apperr.New(apperr.KindParse, "unexpected client error from upstream")
	default:
		return nil
	}
}

// classifyTransportErr wraps a raw transport-level error (DNS, timeout,
// connection reset) into KindTransient; callers retry a bounded number of
// times before letting this surface.
func classifyTransportErr(err error) error {
	return apperr.Wrap(apperr.KindTransient, errors.Wrap(err, "scraper transport"), "network error contacting upstream")
}

// classifyParseErr marks a response-shape mismatch (missing field, changed
// schema) as permanent; it is never retried.
func classifyParseErr(err error) error {
	return apperr.Wrap(apperr.KindParse, errors.Wrap(err, "scraper decode"), "upstream response shape changed")
}
