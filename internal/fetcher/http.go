package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/ramen-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	Retry     resilience.RetryConfig
	RateLimit rate.Limit
}

// HTTPFetcher downloads over HTTP with rate limiting and retries on transient
// failures.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ramen-cli/1.0"
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 5
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2,
			JitterFraction: 0.25,
		}
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(opts.RateLimit, 1),
	}
}

// Download fetches rawURL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	retry := f.opts.Retry
	retry.OnRetry = resilience.RetryLogger("fetcher", "download")

	return resilience.DoVal(ctx, retry, func(ctx context.Context) (io.ReadCloser, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			if resilience.IsTransient(err) && ctx.Err() == nil {
				return nil, resilience.NewTransientError(eris.Wrap(err, "fetcher: download"), 0)
			}
			return nil, eris.Wrap(err, "fetcher: download")
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return nil, eris.Wrapf(resilience.ClassifyStatus(resp.StatusCode, string(body)), "fetcher: download %s", rawURL)
		}
		return resp.Body, nil
	})
}
