// Package search runs the per-place Places searches: a retrying client over
// the raw API and an orchestrator that executes the chosen strategy.
package search

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sells-group/ramen-cli/internal/resilience"
	"github.com/sells-group/ramen-cli/pkg/google"
)

// Client wraps a google.Client with the retry policy. Exhausted transient
// failures degrade to empty responses instead of errors.
type Client struct {
	api    google.Client
	query  string
	retry  resilience.RetryConfig
	search atomic.Int64
	detail atomic.Int64
}

// NewClient builds a retrying client issuing query for every text search.
func NewClient(api google.Client, query string, retry resilience.RetryConfig) *Client {
	if query == "" {
		query = "ramen"
	}
	return &Client{api: api, query: query, retry: retry}
}

// Search issues one text search around location. A permanent failure is
// returned as an error; a transient failure that outlives the retry budget
// is logged and yields an empty response with a nil error.
func (c *Client) Search(ctx context.Context, location google.LatLng, radius int, pageToken string) (*google.TextSearchResponse, error) {
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("google", "text_search")

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*google.TextSearchResponse, error) {
		c.search.Add(1)
		return c.api.TextSearch(ctx, google.TextSearchRequest{
			Query:     c.query,
			Location:  location,
			Radius:    radius,
			PageToken: pageToken,
		})
	})
	if err != nil {
		if resilience.IsTransient(err) {
			zap.L().Warn("text search failed after retries, treating as empty",
				zap.String("location", location.String()),
				zap.Error(err),
			)
			return &google.TextSearchResponse{}, nil
		}
		return &google.TextSearchResponse{}, err
	}
	if resp == nil {
		resp = &google.TextSearchResponse{}
	}
	return resp, nil
}

// Details looks up a place. Any failure yields an empty payload.
func (c *Client) Details(ctx context.Context, placeID string) google.PlaceDetails {
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("google", "details")

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*google.DetailsResponse, error) {
		c.detail.Add(1)
		return c.api.Details(ctx, placeID)
	})
	if err != nil {
		zap.L().Warn("place details failed, using empty payload",
			zap.String("place_id", placeID),
			zap.Error(err),
		)
		return google.PlaceDetails{}
	}
	if resp == nil {
		return google.PlaceDetails{}
	}
	if resp.ErrorMessage != "" {
		zap.L().Warn("place details returned an error message",
			zap.String("place_id", placeID),
			zap.String("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage),
		)
	}
	return resp.Result
}

// Usage reports how many HTTP attempts each endpoint has consumed.
type Usage struct {
	TextSearch int64 `json:"text_search" yaml:"text_search"`
	Details    int64 `json:"details" yaml:"details"`
}

// Usage returns the attempt counters, retries included.
func (c *Client) Usage() Usage {
	return Usage{TextSearch: c.search.Load(), Details: c.detail.Load()}
}
