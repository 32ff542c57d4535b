package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/ramen-cli/internal/config"
	"github.com/sells-group/ramen-cli/internal/cost"
	"github.com/sells-group/ramen-cli/internal/enrich"
	"github.com/sells-group/ramen-cli/internal/model"
	"github.com/sells-group/ramen-cli/internal/pipeline"
	"github.com/sells-group/ramen-cli/internal/progress"
	"github.com/sells-group/ramen-cli/internal/resilience"
	"github.com/sells-group/ramen-cli/internal/search"
	"github.com/sells-group/ramen-cli/internal/sink"
	"github.com/sells-group/ramen-cli/internal/source"
	"github.com/sells-group/ramen-cli/internal/store"
	"github.com/sells-group/ramen-cli/internal/strategy"
	"github.com/sells-group/ramen-cli/pkg/google"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full sweep over the input places",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runSweep(ctx, cfg, os.Stderr)
	},
}

func init() {
	addRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(f *pflag.FlagSet) {
	f.String("input", "", "input sheet path or URL (.xlsx or .csv)")
	f.String("output", "", "output table base path")
	f.StringSlice("format", nil, "table formats: xlsx, csv, geojson, shp")
	f.Bool("test", false, "only process the first input.test_limit places")
	f.Int("limit", 0, "only process the first N places (implies --test)")
	f.Bool("no-dedup", false, "disable place_id deduplication")
	f.Int("concurrency", 0, "places searched concurrently")
	f.String("query", "", "text search query")
	f.String("summary", "", "write a YAML run summary to this path")
}

// applyRunFlags overlays explicitly set flags onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input.Path, _ = f.GetString("input")
	}
	if f.Changed("output") {
		cfg.Output.TablePath, _ = f.GetString("output")
	}
	if f.Changed("format") {
		cfg.Output.Formats, _ = f.GetStringSlice("format")
	}
	if f.Changed("test") {
		cfg.Input.TestMode, _ = f.GetBool("test")
	}
	if f.Changed("limit") {
		limit, _ := f.GetInt("limit")
		if limit <= 0 {
			return eris.Errorf("run: --limit must be positive, got %d", limit)
		}
		cfg.Input.TestMode = true
		cfg.Input.TestLimit = limit
	}
	if f.Changed("no-dedup") {
		noDedup, _ := f.GetBool("no-dedup")
		cfg.Output.Dedup = !noDedup
	}
	if f.Changed("concurrency") {
		cfg.Run.Concurrency, _ = f.GetInt("concurrency")
	}
	if f.Changed("query") {
		cfg.Google.Query, _ = f.GetString("query")
	}
	if f.Changed("summary") {
		cfg.Output.SummaryPath, _ = f.GetString("summary")
	}
	return nil
}

// loadPlaces reads the configured input, honouring test mode.
func loadPlaces(ctx context.Context, cfg *config.Config) ([]model.Place, error) {
	opts := source.Options{Sheet: cfg.Input.Sheet}
	if cfg.Input.TestMode {
		opts.Limit = cfg.Input.TestLimit
	}
	src := &source.FileSource{Path: cfg.Input.Path, Opts: opts}
	places, err := src.Places(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load places")
	}
	zap.L().Info("places loaded",
		zap.String("input", cfg.Input.Path),
		zap.Int("count", len(places)),
		zap.Bool("test_mode", cfg.Input.TestMode),
	)
	return places, nil
}

func newSelector(cfg *config.Config) *strategy.Selector {
	t := cfg.Thresholds
	return strategy.NewSelector(strategy.Thresholds{
		Min:           t.Min,
		PaginationMin: t.PaginationMin,
		PaginationMax: t.PaginationMax,
		GridMin:       t.GridMin,
	}, cfg.Search.GridStepDegrees, cfg.Search.MaxExtraPages)
}

func newCalculator(cfg *config.Config) *cost.Calculator {
	return cost.NewCalculator(cost.Rates{
		TextSearch: cfg.Pricing.TextSearch,
		Details:    cfg.Pricing.Details,
	})
}

// buildRunner wires the sweep from configuration. The returned cleanup closes
// the ledger when one is configured.
func buildRunner(ctx context.Context, cfg *config.Config, api google.Client, bar *progress.Bar) (*pipeline.Runner, func(), error) {
	retry := resilience.FixedRetryConfig(cfg.Search.RetryAttempts, time.Duration(cfg.Search.RetryBackoffMS)*time.Millisecond)
	client := search.NewClient(api, cfg.Google.Query, retry)
	pacer := search.SleepPacer{Interval: time.Duration(cfg.Search.PacingMS) * time.Millisecond}

	deps := pipeline.Deps{
		Selector: newSelector(cfg),
		Fetcher:  search.NewOrchestrator(client, pacer, cfg.Search.RadiusMeters),
		Enricher: enrich.New(client, enrich.Options{
			MaxResults:     cfg.Output.MaxResults,
			Scope:          enrich.Scope(cfg.Output.CapScope),
			StreetViewURL:  cfg.Google.StreetViewURL,
			StreetViewSize: cfg.Google.StreetViewSize,
			APIKey:         cfg.Google.Key,
		}),
		Usage: client,
		Cost:  newCalculator(cfg),
	}

	if cfg.Output.LogSkips {
		skipLog, err := sink.NewSkipLog(cfg.Output.SkipLogPath)
		if err != nil {
			return nil, nil, err
		}
		deps.SkipLog = skipLog
	}

	cleanup := func() {}
	if cfg.Store.Driver != "" {
		ledger, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open run ledger")
		}
		deps.Ledger = ledger
		cleanup = func() { _ = ledger.Close() }
	}

	opts := pipeline.Options{
		Input:       cfg.Input.Path,
		Dedup:       cfg.Output.Dedup,
		SaveJSON:    cfg.Output.SaveJSON,
		JSONDir:     cfg.Output.JSONDir,
		TablePath:   cfg.Output.TablePath,
		Formats:     cfg.Output.Formats,
		SummaryPath: cfg.Output.SummaryPath,
		Concurrency: cfg.Run.Concurrency,
	}
	if bar != nil {
		opts.OnPlace = func(p model.Place, _ model.PlaceOutcome) { bar.Advance(p.Label()) }
	}
	return pipeline.New(deps, opts), cleanup, nil
}

func newGoogleClient(cfg *config.Config) google.Client {
	return google.NewClient(cfg.Google.Key,
		google.WithBaseURL(cfg.Google.BaseURL),
		google.WithTimeout(time.Duration(cfg.Google.TimeoutSecs)*time.Second),
		google.WithRateLimit(cfg.Google.RateLimit),
	)
}

// runSweep loads the places, runs the sweep and prints the summary to w.
func runSweep(ctx context.Context, cfg *config.Config, w io.Writer) error {
	places, err := loadPlaces(ctx, cfg)
	if err != nil {
		return err
	}

	bar := progress.NewBar(w, len(places), cfg.Log.Progress)
	runner, cleanup, err := buildRunner(ctx, cfg, newGoogleClient(cfg), bar)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runner.Run(ctx, places)
	bar.Finish()
	if err != nil {
		return eris.Wrap(err, "run sweep")
	}

	_, _ = fmt.Fprintln(w, progress.RenderSummary(report.Summary))
	return nil
}
