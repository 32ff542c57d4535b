// Package enrich turns deduplicated candidates into output rows by looking up
// place details, enforcing the result cap along the way.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/ramen-cli/internal/model"
	"github.com/sells-group/ramen-cli/pkg/google"
)

// DefaultMaxResults is the default result cap.
const DefaultMaxResults = 60

// Scope selects what the result cap counts.
type Scope string

const (
	// ScopeRun caps the total number of rows in the run.
	ScopeRun Scope = "run"
	// ScopePlace caps the rows produced by each place.
	ScopePlace Scope = "place"
)

// DetailsFetcher looks up a place. Failures yield an empty payload.
type DetailsFetcher interface {
	Details(ctx context.Context, placeID string) google.PlaceDetails
}

// Options configures an Enricher.
type Options struct {
	MaxResults     int
	Scope          Scope
	StreetViewURL  string
	StreetViewSize string
	APIKey         string
}

// Enricher projects candidates into output rows.
type Enricher struct {
	details DetailsFetcher
	opts    Options
}

// New creates an Enricher. A non-positive cap falls back to DefaultMaxResults
// and an empty scope to ScopeRun.
func New(details DetailsFetcher, opts Options) *Enricher {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Scope == "" {
		opts.Scope = ScopeRun
	}
	return &Enricher{details: details, opts: opts}
}

// Result summarises one Enrich call.
type Result struct {
	Added      int
	Duplicates int
	Capped     bool
}

// Enrich walks candidates in order. For each one it checks the cap, admits the
// identifier through the seen set, issues one details lookup and appends the
// projected row to st. Candidates after the cap is hit are neither admitted
// nor looked up.
func (e *Enricher) Enrich(ctx context.Context, place model.Place, candidates []google.Place, st *State) Result {
	var res Result
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		if e.capped(st, res.Added) {
			res.Capped = true
			break
		}
		if c.PlaceID == "" && st.Seen.Enabled() {
			zap.L().Debug("candidate without place_id dropped", zap.String("place", place.Label()))
			continue
		}
		if !st.Seen.Admit(c.PlaceID) {
			res.Duplicates++
			continue
		}

		d := e.details.Details(ctx, c.PlaceID)
		st.Lookups++
		st.Rows = append(st.Rows, e.Project(place, c.PlaceID, d))
		res.Added++
	}
	st.Duplicates += res.Duplicates

	if res.Capped {
		zap.L().Info("result cap reached",
			zap.String("place", place.Label()),
			zap.String("scope", string(e.opts.Scope)),
			zap.Int("max_results", e.opts.MaxResults),
		)
	}
	return res
}

// Exhausted reports whether the run-wide cap has been reached, after which no
// further place can contribute rows.
func (e *Enricher) Exhausted(st *State) bool {
	return e.opts.Scope == ScopeRun && len(st.Rows) >= e.opts.MaxResults
}

func (e *Enricher) capped(st *State, addedForPlace int) bool {
	if e.opts.Scope == ScopePlace {
		return addedForPlace >= e.opts.MaxResults
	}
	return len(st.Rows) >= e.opts.MaxResults
}

// Project builds the output row for one candidate. Coordinates come from the
// details payload; when it has none the coordinates stay nil and both links
// are left empty.
func (e *Enricher) Project(place model.Place, placeID string, d google.PlaceDetails) model.OutputRow {
	row := model.OutputRow{
		City:    place.City,
		State:   place.State,
		Zip:     place.Zip,
		PlaceID: placeID,
		Name:    d.Name,
		Address: d.FormattedAddress,
		Phone:   d.FormattedPhoneNumber,
		Rating:  d.Rating,
		Website: d.Website,
	}
	if loc := d.Location(); loc != nil {
		lat, lng := loc.Lat, loc.Lng
		row.Latitude = &lat
		row.Longitude = &lng
		row.MapsURL = google.MapsSearchURL(*loc)
		row.StreetViewURL = google.StreetViewURL(e.opts.StreetViewURL, e.opts.StreetViewSize, *loc, e.opts.APIKey)
	}
	return row
}
