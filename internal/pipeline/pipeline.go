// Package pipeline runs a sweep: it visits places in input order, searches
// each one with the strategy its population calls for, and threads an
// explicit enrich.State through snapshot, dedup and enrichment.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ramen-cli/internal/cost"
	"github.com/sells-group/ramen-cli/internal/enrich"
	"github.com/sells-group/ramen-cli/internal/model"
	"github.com/sells-group/ramen-cli/internal/search"
	"github.com/sells-group/ramen-cli/internal/sink"
	"github.com/sells-group/ramen-cli/internal/store"
	"github.com/sells-group/ramen-cli/internal/strategy"
	"github.com/sells-group/ramen-cli/pkg/google"
)

// Fetcher executes a search strategy around a centre.
type Fetcher interface {
	Fetch(ctx context.Context, center google.LatLng, s strategy.Strategy) (search.Outcome, error)
}

// SkipLogger records skipped places.
type SkipLogger interface {
	Append(rec model.SkipRecord) error
}

// UsageMeter reports API attempts, retries included.
type UsageMeter interface {
	Usage() search.Usage
}

// Deps are the collaborators of a Runner. Only Selector, Fetcher and
// Enricher are required.
type Deps struct {
	Selector *strategy.Selector
	Fetcher  Fetcher
	Enricher *enrich.Enricher
	SkipLog  SkipLogger
	Ledger   store.Store
	Usage    UsageMeter
	Cost     *cost.Calculator
}

// Options configures a run.
type Options struct {
	// Input is recorded in the ledger and the summary.
	Input string
	// Dedup toggles the run-wide seen set.
	Dedup bool
	// SaveJSON writes a raw snapshot per searched place into JSONDir.
	SaveJSON bool
	JSONDir  string
	// TablePath is the base path of the exported table; empty skips export.
	TablePath string
	Formats   []string
	// SummaryPath receives a YAML summary when set.
	SummaryPath string
	// Concurrency above 1 prefetches searches for that many places at once.
	Concurrency int
	// OnPlace is called after each place is handled.
	OnPlace func(p model.Place, o model.PlaceOutcome)
}

// Runner drives one sweep.
type Runner struct {
	deps Deps
	opts Options
}

// New creates a Runner.
func New(deps Deps, opts Options) *Runner {
	if deps.Cost == nil {
		deps.Cost = cost.NewCalculator(cost.DefaultRates())
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{deps: deps, opts: opts}
}

// Report is the result of a run.
type Report struct {
	RunID    string
	State    *enrich.State
	Outcomes []model.PlaceOutcome
	Summary  sink.Summary
}

// prefetched is a place with its strategy and, when searched, its outcome.
type prefetched struct {
	place    model.Place
	strategy strategy.Strategy
	outcome  search.Outcome
}

// Run visits places in order. Per-place failures never abort the run; only
// cancellation does, in which case the partial report is returned alongside
// the error and the table is not written.
func (r *Runner) Run(ctx context.Context, places []model.Place) (*Report, error) {
	log := zap.L().With(zap.String("input", r.opts.Input), zap.Int("places", len(places)))
	log.Info("pipeline: starting sweep", zap.Int("concurrency", r.opts.Concurrency))

	report := &Report{
		State: enrich.NewState(r.opts.Dedup),
		Summary: sink.Summary{
			StartedAt:   time.Now().UTC(),
			Input:       r.opts.Input,
			Places:      len(places),
			SkipReasons: map[string]int{},
			Strategies:  map[string]int{},
		},
	}

	if r.deps.Ledger != nil {
		run, err := r.deps.Ledger.CreateRun(ctx, r.opts.Input)
		if err != nil {
			return report, eris.Wrap(err, "pipeline: create run")
		}
		report.RunID = run.ID
		report.Summary.RunID = run.ID
		log = log.With(zap.String("run_id", run.ID))
	}

	runErr := r.sweep(ctx, places, report)
	r.finish(report)

	if runErr != nil {
		log.Error("pipeline: sweep interrupted",
			zap.Int("visited", report.State.Visited),
			zap.Int("rows", len(report.State.Rows)),
			zap.Error(runErr),
		)
		r.failRun(report, runErr)
		return report, runErr
	}

	if r.opts.TablePath != "" {
		outputs, err := sink.WriteTables(r.opts.TablePath, r.opts.Formats, report.State.Rows)
		report.Summary.Outputs = outputs
		if err != nil {
			r.failRun(report, err)
			return report, err
		}
	}
	if r.opts.SummaryPath != "" {
		if err := sink.WriteSummary(r.opts.SummaryPath, report.Summary); err != nil {
			log.Warn("pipeline: failed to write summary", zap.Error(err))
		} else {
			report.Summary.Outputs = append(report.Summary.Outputs, r.opts.SummaryPath)
		}
	}

	if r.deps.Ledger != nil {
		if err := r.deps.Ledger.CompleteRun(context.WithoutCancel(ctx), report.RunID, runResult(report.Summary)); err != nil {
			log.Warn("pipeline: failed to complete run", zap.Error(err))
		}
	}

	log.Info("pipeline: sweep complete",
		zap.Int("searched", report.Summary.Searched),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("rows", report.Summary.Rows),
		zap.Float64("estimated_cost", report.Summary.EstimatedCost),
	)
	return report, nil
}

// sweep processes places window by window. Searches inside a window may run
// concurrently; everything that touches State runs in input order.
func (r *Runner) sweep(ctx context.Context, places []model.Place, report *Report) error {
	window := r.opts.Concurrency
	for start := 0; start < len(places); start += window {
		end := min(start+window, len(places))

		batch, err := r.prefetch(ctx, places[start:end])
		if err != nil {
			return err
		}
		for _, item := range batch {
			r.handle(ctx, item, report)
			if r.deps.Enricher.Exhausted(report.State) {
				report.Summary.CapReached = true
				zap.L().Info("pipeline: result cap reached, stopping",
					zap.Int("rows", len(report.State.Rows)),
					zap.Int("remaining_places", len(places)-report.State.Visited),
				)
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "pipeline: sweep canceled")
		}
	}
	return nil
}

func (r *Runner) prefetch(ctx context.Context, places []model.Place) ([]prefetched, error) {
	batch := make([]prefetched, len(places))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, p := range places {
		batch[i] = prefetched{place: p, strategy: r.deps.Selector.Select(p.Population)}
		if batch[i].strategy.Kind == strategy.Skip {
			continue
		}
		g.Go(func() error {
			out, err := r.deps.Fetcher.Fetch(gctx, p.Location(), batch[i].strategy)
			if err != nil {
				return eris.Wrapf(err, "pipeline: search %s", p.Label())
			}
			batch[i].outcome = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// handle applies the skip rules, writes the snapshot and enriches one place.
func (r *Runner) handle(ctx context.Context, item prefetched, report *Report) {
	st := report.State
	p, s, out := item.place, item.strategy, item.outcome
	st.Visited++

	outcome := model.PlaceOutcome{
		City:       p.City,
		State:      p.State,
		Population: p.Population,
		Strategy:   s.Kind.String(),
		Calls:      out.Calls,
		Candidates: len(out.Candidates),
	}
	report.Summary.Strategies[outcome.Strategy]++

	switch {
	case s.Kind == strategy.Skip:
		outcome.SkipReason = model.ReasonBelowThreshold
	case out.ErrorMessage != "":
		outcome.SkipReason = model.APIErrorReason(out.ErrorMessage)
	case len(out.Candidates) == 0:
		outcome.SkipReason = model.ReasonNoResults
	}
	if s.Kind != strategy.Skip {
		st.Searched++
	}

	if outcome.SkipReason != "" {
		r.skip(p, outcome.SkipReason, report)
	} else {
		if r.opts.SaveJSON {
			if _, err := sink.WriteSnapshot(r.opts.JSONDir, p.City, out.Candidates); err != nil {
				zap.L().Warn("pipeline: failed to write snapshot", zap.String("place", p.Label()), zap.Error(err))
			}
		}
		res := r.deps.Enricher.Enrich(ctx, p, out.Candidates, st)
		outcome.Rows = res.Added
		zap.L().Debug("pipeline: place enriched",
			zap.String("place", p.Label()),
			zap.String("strategy", outcome.Strategy),
			zap.Int("calls", out.Calls),
			zap.Int("candidates", len(out.Candidates)),
			zap.Int("rows", res.Added),
			zap.Int("duplicates", res.Duplicates),
		)
	}

	report.Outcomes = append(report.Outcomes, outcome)
	if r.deps.Ledger != nil && report.RunID != "" {
		if err := r.deps.Ledger.RecordPlace(context.WithoutCancel(ctx), report.RunID, outcome); err != nil {
			zap.L().Warn("pipeline: failed to record place", zap.String("place", p.Label()), zap.Error(err))
		}
	}
	if r.opts.OnPlace != nil {
		r.opts.OnPlace(p, outcome)
	}
}

func (r *Runner) skip(p model.Place, reason string, report *Report) {
	rec := report.State.Skip(p, reason)
	report.Summary.SkipReasons[reason]++
	zap.L().Info("pipeline: place skipped", zap.String("place", p.Label()), zap.String("reason", reason))
	if r.deps.SkipLog == nil {
		return
	}
	if err := r.deps.SkipLog.Append(rec); err != nil {
		zap.L().Warn("pipeline: failed to append skip log", zap.String("place", p.Label()), zap.Error(err))
	}
}

// finish fills the summary totals from state and usage.
func (r *Runner) finish(report *Report) {
	st := report.State
	sum := &report.Summary
	sum.FinishedAt = time.Now().UTC()
	sum.Searched = st.Searched
	sum.Skipped = len(st.Skips)
	sum.Rows = len(st.Rows)
	sum.Duplicates = st.Duplicates

	if r.deps.Usage != nil {
		u := r.deps.Usage.Usage()
		sum.TextSearchCalls = u.TextSearch
		sum.DetailsCalls = u.Details
	} else {
		for _, o := range report.Outcomes {
			sum.TextSearchCalls += int64(o.Calls)
		}
		sum.DetailsCalls = int64(st.Lookups)
	}
	sum.EstimatedCost = r.deps.Cost.Total(sum.TextSearchCalls, sum.DetailsCalls)
}

func (r *Runner) failRun(report *Report, err error) {
	if r.deps.Ledger == nil || report.RunID == "" {
		return
	}
	if ferr := r.deps.Ledger.FailRun(context.Background(), report.RunID, err.Error()); ferr != nil {
		zap.L().Warn("pipeline: failed to mark run failed", zap.Error(ferr))
	}
}

func runResult(s sink.Summary) *model.RunResult {
	return &model.RunResult{
		Places:          s.Places,
		Searched:        s.Searched,
		Skipped:         s.Skipped,
		Rows:            s.Rows,
		Duplicates:      s.Duplicates,
		TextSearchCalls: s.TextSearchCalls,
		DetailsCalls:    s.DetailsCalls,
		EstimatedCost:   s.EstimatedCost,
		CapReached:      s.CapReached,
	}
}
