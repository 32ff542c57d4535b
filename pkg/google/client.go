package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/ramen-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	// DefaultDetailFields is the field mask requested from Place Details.
	DefaultDetailFields = "name,formatted_address,formatted_phone_number,rating,geometry,website,url"
)

// Client performs Google Places API operations.
type Client interface {
	TextSearch(ctx context.Context, req TextSearchRequest) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*DetailsResponse, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithDetailFields overrides the Place Details field mask.
func WithDetailFields(fields string) Option {
	return func(c *httpClient) {
		c.detailFields = fields
	}
}

type httpClient struct {
	apiKey       string
	baseURL      string
	detailFields string
	http         *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		detailFields: DefaultDetailFields,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(10, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, req TextSearchRequest) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("location", req.Location.String())
	params.Set("radius", strconv.Itoa(req.Radius))
	params.Set("key", c.apiKey)
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	var result TextSearchResponse
	if err := c.get(ctx, "/textsearch/json", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*DetailsResponse, error) {
	if placeID == "" {
		return nil, eris.New("google: place id is required")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", c.detailFields)
	params.Set("key", c.apiKey)

	var result DetailsResponse
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "google: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "google: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		wrapped := eris.Wrap(err, "google: send request")
		if ctx.Err() == nil && resilience.IsTransient(err) {
			return resilience.NewTransientError(wrapped, 0)
		}
		return wrapped
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resilience.NewTransientError(eris.Wrap(err, "google: read response"), resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Wrapf(resilience.ClassifyStatus(resp.StatusCode, string(body)), "google: %s", path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "google: unmarshal response")
	}
	return nil
}
