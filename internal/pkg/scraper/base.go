package scraper

import (
	"context"
	log "log/slog"
	"time"

	"trackforge/internal/pkg/apperr"
	"trackforge/internal/pkg/cookiepool"

	"github.com/go-resty/resty/v2"
)

const maxTransientRetries = 3

// baseClient carries the pieces common to both platform implementations:
// one resty.Client for JSON/GraphQL calls and the Cookie Pool that supplies
// the credential header. Platform-specific request shaping lives in
// instagram.go and twitter.go.
type baseClient struct {
	http     *resty.Client
	pool     *cookiepool.Pool
	platform string
}

func newBaseClient(platform string, pool *cookiepool.Pool, timeout time.Duration) baseClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")

	return baseClient{http: client, pool: pool, platform: platform}
}

// get performs a GET with the current credential attached as a cookie
// header, classifies the response, retries KindTransient up to
// maxTransientRetries with exponential backoff, and updates the Cookie
// Pool on both success and failure.
func (b *baseClient) get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxTransientRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<attempt) * 200 * time.Millisecond)
		}

		cred := b.pool.Current()
		if cred == nil {
			return nil, apperr.New(apperr.KindAuthFailed, "no usable credential in pool")
		}

		req := b.http.R().SetContext(ctx).SetHeader("Cookie", cred.Raw)
		for k, v := range headers {
			req.SetHeader(k, v)
		}

		resp, err := req.Get(url)
		if err != nil {
			lastErr = classifyTransportErr(err)
			log.WarnContext(ctx, "scraper transport error", log.String("platform", b.platform), log.Int("attempt", attempt))
			continue
		}

		retryAfter := b.pool.RetryAfter()
		if classifyErr := classifyResponse(resp.StatusCode(), resp.String(), retryAfter); classifyErr != nil {
			if apperr.Is(classifyErr, apperr.KindRateLimited) || apperr.Is(classifyErr, apperr.KindAuthFailed) {
				wait := b.pool.MarkFailure(ctx, string(apperr.KindOf(classifyErr)))
				if apperr.Is(classifyErr, apperr.KindRateLimited) {
					classifyErr = apperr.RateLimited(wait, "upstream signaled rate limit")
				}
				return nil, classifyErr
			}
			if apperr.Is(classifyErr, apperr.KindTransient) {
				lastErr = classifyErr
				continue
			}
			return nil, classifyErr
		}

		b.pool.MarkSuccess(ctx)
		return resp, nil
	}
	return nil, lastErr
}
