package scraper

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"trackforge/internal/pkg/apperr"
)

func TestClassifyResponse_TooManyRequests(t *testing.T) {
	err := classifyResponse(http.StatusTooManyRequests, "", time.Minute)
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("classifyResponse(429) = %v, want KindRateLimited", err)
	}
}

func TestClassifyResponse_RateLimitMarkerInBody(t *testing.T) {
	err := classifyResponse(http.StatusOK, "Please wait a few minutes before you try again", 0)
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("classifyResponse with rate-limit body marker = %v, want KindRateLimited", err)
	}
}

func TestClassifyResponse_UnauthorizedWithoutRateMarkerIsAuthFailed(t *testing.T) {
	err := classifyResponse(http.StatusUnauthorized, "invalid credentials", 0)
	if !apperr.Is(err, apperr.KindAuthFailed) {
		t.Fatalf("classifyResponse(401, no rate marker) = %v, want KindAuthFailed", err)
	}
}

func TestClassifyResponse_UnauthorizedWithRateMarkerIsRateLimited(t *testing.T) {
	err := classifyResponse(http.StatusUnauthorized, "please wait a few minutes", 5*time.Second)
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("classifyResponse(401, with rate marker) = %v, want KindRateLimited", err)
	}
}

func TestClassifyResponse_ForbiddenIsAuthFailed(t *testing.T) {
	err := classifyResponse(http.StatusForbidden, "", 0)
	if !apperr.Is(err, apperr.KindAuthFailed) {
		t.Fatalf("classifyResponse(403) = %v, want KindAuthFailed", err)
	}
}

func TestClassifyResponse_ServerErrorIsTransient(t *testing.T) {
	err := classifyResponse(http.StatusBadGateway, "", 0)
	if !apperr.Is(err, apperr.KindTransient) {
		t.Fatalf("classifyResponse(502) = %v, want KindTransient", err)
	}
}

func TestClassifyResponse_ClientErrorIsParse(t *testing.T) {
	err := classifyResponse(http.StatusBadRequest, "", 0)
	if !apperr.Is(err, apperr.KindParse) {
		t.Fatalf("classifyResponse(400) = %v, want KindParse", err)
	}
}

func TestClassifyResponse_SuccessReturnsNil(t *testing.T) {
	if err := classifyResponse(http.StatusOK, "", 0); err != nil {
		t.Fatalf("classifyResponse(200) = %v, want nil", err)
	}
}

func TestClassifyTransportErr_IsTransient(t *testing.T) {
	err := classifyTransportErr(errors.New("dial tcp: connection refused"))
	if !apperr.Is(err, apperr.KindTransient) {
		t.Fatalf("classifyTransportErr() = %v, want KindTransient", err)
	}
}

func TestClassifyParseErr_IsParse(t *testing.T) {
	err := classifyParseErr(errors.New("missing field \"edge_owner_to_timeline_media\""))
	if !apperr.Is(err, apperr.KindParse) {
		t.Fatalf("classifyParseErr() = %v, want KindParse", err)
	}
}
