package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/ramen-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "ramen-cli",
	Short:         "Places sweep for ramen shops",
	Long:          "Searches Google Places around every populated place in an input sheet, deduplicates and enriches the matches, and exports them as a table.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := applyLogFlags(cmd.Flags(), &c.Log); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.Name()),
			zap.String("input", cfg.Input.Path),
			zap.String("cap_scope", cfg.Output.CapScope),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("log-level", "", "override log.level (debug, info, warn, error)")
	f.String("log-format", "", "override log.format (console, json)")
	f.Bool("no-progress", false, "disable the progress bar")
}

// applyLogFlags overlays the persistent logging flags that were set on the
// command line.
func applyLogFlags(f *pflag.FlagSet, lc *config.LogConfig) error {
	if f.Changed("log-level") {
		v, err := f.GetString("log-level")
		if err != nil {
			return eris.Wrap(err, "read --log-level")
		}
		lc.Level = v
	}
	if f.Changed("log-format") {
		v, err := f.GetString("log-format")
		if err != nil {
			return eris.Wrap(err, "read --log-format")
		}
		if v != "console" && v != "json" {
			return eris.Errorf("--log-format must be console or json, got %q", v)
		}
		lc.Format = v
	}
	if f.Changed("no-progress") {
		off, err := f.GetBool("no-progress")
		if err != nil {
			return eris.Wrap(err, "read --no-progress")
		}
		lc.Progress = !off
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
