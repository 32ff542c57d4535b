package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ramen-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Input:     "us_all_cities_sample.xlsx",
			Status:    model.RunStatusComplete,
			Result:    &model.RunResult{Rows: 60, EstimatedCost: 1.25},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Input:     "https://example.com/data/very/long/path/to/cities.xlsx",
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "INPUT")
	assert.Contains(t, output, "us_all_cities_sample.xlsx")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "$1.25")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "cities.xlsx")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "2m0s")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestOpenLedger_NotConfigured(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = testConfig(t.TempDir(), "")

	_, err := openLedger(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}
