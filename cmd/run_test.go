package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ramen-cli/internal/config"
	"github.com/sells-group/ramen-cli/internal/sink"
)

const testCities = `city,state,zipcode,lat,lng,population
Springfield,IL,62701,39.7817,-89.6501,3000000
Smallville,KS,,39.0,-98.0,50000
`

func testConfig(dir, baseURL string) *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{
			Key:            "test-key",
			BaseURL:        baseURL,
			StreetViewURL:  "https://maps.googleapis.com/maps/api/streetview",
			StreetViewSize: "600x300",
			Query:          "ramen",
			TimeoutSecs:    5,
		},
		Search: config.SearchConfig{
			RadiusMeters:    5000,
			GridStepDegrees: 0.045,
			MaxExtraPages:   2,
			RetryAttempts:   1,
			RetryBackoffMS:  1,
		},
		Thresholds: config.ThresholdsConfig{Min: 100_000, PaginationMin: 1_000_000, PaginationMax: 5_000_000, GridMin: 5_000_001},
		Output: config.OutputConfig{
			MaxResults:  60,
			CapScope:    config.CapScopeRun,
			Dedup:       true,
			LogSkips:    true,
			SkipLogPath: filepath.Join(dir, "logs", "skipped_cities.log"),
			SaveJSON:    true,
			JSONDir:     filepath.Join(dir, "json_results"),
			TablePath:   filepath.Join(dir, "ramen_shops_usa.xlsx"),
			Formats:     []string{"xlsx"},
		},
		Input:   config.InputConfig{Path: filepath.Join(dir, "cities.csv"), TestLimit: 5},
		Run:     config.RunConfig{Concurrency: 1},
		Pricing: config.PricingConfig{TextSearch: 0.032, Details: 0.017},
		Log:     config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestApplyRunFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addRunFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("input", "other.xlsx"))
	require.NoError(t, cmd.Flags().Set("format", "csv,geojson"))
	require.NoError(t, cmd.Flags().Set("limit", "3"))
	require.NoError(t, cmd.Flags().Set("no-dedup", "true"))
	require.NoError(t, cmd.Flags().Set("query", "tonkotsu"))

	c := testConfig(t.TempDir(), "")
	require.NoError(t, applyRunFlags(cmd, c))

	assert.Equal(t, "other.xlsx", c.Input.Path)
	assert.Equal(t, []string{"csv", "geojson"}, c.Output.Formats)
	assert.True(t, c.Input.TestMode)
	assert.Equal(t, 3, c.Input.TestLimit)
	assert.False(t, c.Output.Dedup)
	assert.Equal(t, "tonkotsu", c.Google.Query)
	// Untouched flags leave the config alone.
	assert.Equal(t, 1, c.Run.Concurrency)
}

func TestApplyRunFlags_BadLimit(t *testing.T) {
	cmd := &cobra.Command{}
	addRunFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("limit", "0"))

	err := applyRunFlags(cmd, testConfig(t.TempDir(), ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit")
}

func TestRunSweep(t *testing.T) {
	var textCalls, detailCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/textsearch/json":
			textCalls.Add(1)
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"place_id":"P1"},{"place_id":"P2"}]}`))
		case "/details/json":
			detailCalls.Add(1)
			_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"Ramen ` + r.URL.Query().Get("place_id") +
				`","geometry":{"location":{"lat":39.78,"lng":-89.65}}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities.csv"), []byte(testCities), 0o644))
	c := testConfig(dir, srv.URL)
	c.Output.SummaryPath = filepath.Join(dir, "summary.yaml")

	var out bytes.Buffer
	require.NoError(t, runSweep(context.Background(), c, &out))

	assert.Equal(t, int32(1), textCalls.Load())
	assert.Equal(t, int32(2), detailCalls.Load())
	assert.FileExists(t, filepath.Join(dir, "ramen_shops_usa.xlsx"))
	assert.FileExists(t, filepath.Join(dir, "json_results", "Springfield.json"))

	skipLog, err := os.ReadFile(c.Output.SkipLogPath)
	require.NoError(t, err)
	assert.Equal(t, "Smallville, KS — Population below threshold", strings.TrimSpace(string(skipLog)))

	summary, err := sink.ReadSummary(c.Output.SummaryPath)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Places)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 1, summary.Skipped)

	assert.Contains(t, out.String(), "Sweep complete")
}

func TestRunSweep_MissingInput(t *testing.T) {
	c := testConfig(t.TempDir(), "http://127.0.0.1:0")
	err := runSweep(context.Background(), c, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load places")
}
