package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/ramen-cli/internal/config"
	"github.com/sells-group/ramen-cli/internal/pipeline"
	"github.com/sells-group/ramen-cli/internal/strategy"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the search strategy and estimated cost per place without calling the API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.ValidateOffline(); err != nil {
			return err
		}

		places, err := loadPlaces(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		plan := pipeline.BuildPlan(places, newSelector(cfg), newCalculator(cfg),
			cfg.Output.MaxResults, cfg.Output.CapScope == config.CapScopePlace)
		verbose, _ := cmd.Flags().GetBool("verbose")
		formatPlan(os.Stdout, plan, verbose)
		return nil
	},
}

func init() {
	f := planCmd.Flags()
	f.String("input", "", "input sheet path or URL (.xlsx or .csv)")
	f.Bool("test", false, "only plan the first input.test_limit places")
	f.Int("limit", 0, "only plan the first N places")
	f.BoolP("verbose", "v", false, "list every place, not only searched ones")
	rootCmd.AddCommand(planCmd)
}

// formatPlan writes the per-place table and totals to out.
func formatPlan(out io.Writer, plan pipeline.Plan, verbose bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLACE\tPOPULATION\tSTRATEGY\tCALLS\tFOOTPRINT")
	_, _ = fmt.Fprintln(w, "-----\t----------\t--------\t-----\t---------")

	for _, pp := range plan.Places {
		if pp.Strategy.Kind == strategy.Skip && !verbose {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			pp.Place.Label(),
			pp.Place.Population,
			pp.Strategy.Kind,
			pp.Calls,
			formatFootprint(pp.Footprint),
		)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Places:\t%d\n", len(plan.Places))
	kinds := make([]string, 0, len(plan.Strategies))
	for k := range plan.Strategies {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", k, plan.Strategies[k])
	}
	_, _ = fmt.Fprintf(w, "Text searches (max):\t%d\t$%.2f\n", plan.Cost.TextSearchCalls, plan.Cost.TextSearchCost)
	_, _ = fmt.Fprintf(w, "Details lookups (max):\t%d\t$%.2f\n", plan.Cost.DetailsCalls, plan.Cost.DetailsCost)
	_, _ = fmt.Fprintf(w, "Estimated cost (max):\t$%.2f\n", plan.Cost.Total)
	_ = w.Flush()
}

func formatFootprint(fp strategy.Footprint) string {
	if fp.WidthM == 0 && fp.HeightM == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fx%.1f km", fp.WidthM/1000, fp.HeightM/1000)
}
