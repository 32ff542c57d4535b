package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/ramen-cli/internal/resilience"
	"github.com/sells-group/ramen-cli/internal/strategy"
	"github.com/sells-group/ramen-cli/pkg/google"
)

// Searcher is the slice of Client the orchestrator needs.
type Searcher interface {
	Search(ctx context.Context, location google.LatLng, radius int, pageToken string) (*google.TextSearchResponse, error)
}

// Outcome is the raw result of executing one strategy.
type Outcome struct {
	Candidates   []google.Place
	ErrorMessage string
	Calls        int
}

// Empty reports whether the place produced nothing and no error.
func (o Outcome) Empty() bool {
	return len(o.Candidates) == 0 && o.ErrorMessage == ""
}

// Orchestrator executes strategies against a Searcher.
type Orchestrator struct {
	searcher Searcher
	pacer    Pacer
	radius   int
}

// NewOrchestrator creates an Orchestrator. A nil pacer never waits.
func NewOrchestrator(searcher Searcher, pacer Pacer, radius int) *Orchestrator {
	if pacer == nil {
		pacer = NopPacer{}
	}
	return &Orchestrator{searcher: searcher, pacer: pacer, radius: radius}
}

// Fetch runs s around center. Skip strategies issue no calls. Only the first
// call of Direct and Paginated strategies reports an error message; later
// pages and grid points that fail simply contribute nothing.
func (o *Orchestrator) Fetch(ctx context.Context, center google.LatLng, s strategy.Strategy) (Outcome, error) {
	switch s.Kind {
	case strategy.Direct:
		return o.direct(ctx, center)
	case strategy.Paginated:
		return o.paginated(ctx, center, s.MaxExtraPages)
	case strategy.Grid:
		return o.grid(ctx, center, s.Offsets)
	default:
		return Outcome{}, nil
	}
}

func (o *Orchestrator) direct(ctx context.Context, center google.LatLng) (Outcome, error) {
	out, _, err := o.first(ctx, center)
	return out, err
}

// first issues the opening call and returns its continuation token.
func (o *Orchestrator) first(ctx context.Context, center google.LatLng) (Outcome, string, error) {
	out := Outcome{Calls: 1}
	resp, err := o.searcher.Search(ctx, center, o.radius, "")
	if err != nil {
		if ctx.Err() != nil {
			return out, "", ctx.Err()
		}
		out.ErrorMessage = resilience.APIMessage(err)
		return out, "", nil
	}
	if resp.ErrorMessage != "" {
		out.ErrorMessage = resp.ErrorMessage
		return out, "", nil
	}
	out.Candidates = resp.Results
	return out, resp.NextPageToken, nil
}

func (o *Orchestrator) paginated(ctx context.Context, center google.LatLng, extraPages int) (Outcome, error) {
	out, token, err := o.first(ctx, center)
	if err != nil || out.ErrorMessage != "" {
		return out, err
	}

	for page := 0; page < extraPages && token != ""; page++ {
		// Page tokens are not valid immediately after they are issued.
		if err := o.pacer.Wait(ctx); err != nil {
			return out, err
		}
		resp, err := o.searcher.Search(ctx, center, o.radius, token)
		out.Calls++
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			zap.L().Warn("continuation page failed, keeping earlier pages",
				zap.String("location", center.String()),
				zap.Int("page", page+2),
				zap.Error(err),
			)
			break
		}
		out.Candidates = append(out.Candidates, resp.Results...)
		token = resp.NextPageToken
	}
	return out, nil
}

func (o *Orchestrator) grid(ctx context.Context, center google.LatLng, offsets []strategy.Offset) (Outcome, error) {
	var out Outcome
	for i, point := range strategy.GridPoints(center, offsets) {
		if i > 0 {
			if err := o.pacer.Wait(ctx); err != nil {
				return out, err
			}
		}
		resp, err := o.searcher.Search(ctx, point, o.radius, "")
		out.Calls++
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			zap.L().Warn("grid point search failed",
				zap.String("point", point.String()),
				zap.Error(err),
			)
			continue
		}
		out.Candidates = append(out.Candidates, resp.Results...)
	}
	return out, nil
}
