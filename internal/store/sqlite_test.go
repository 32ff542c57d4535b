package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ramen-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return s
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "us_all_cities_sample.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "us_all_cities_sample.xlsx", got.Input)
	assert.Nil(t, got.Result)

	result := &model.RunResult{Places: 5, Searched: 3, Skipped: 2, Rows: 12, TextSearchCalls: 5, DetailsCalls: 12, EstimatedCost: 0.364}
	require.NoError(t, s.CompleteRun(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, *result, *got.Result)
}

func TestSQLite_FailRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "cities.csv")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "context canceled"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "context canceled", got.Error)
}

func TestSQLite_UnknownRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = s.CompleteRun(ctx, "missing", &model.RunResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, "a.xlsx")
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, "b.xlsx")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, second.ID, &model.RunResult{Rows: 1}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, second.ID, complete[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
	_ = first
}

func TestSQLite_Places(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "cities.xlsx")
	require.NoError(t, err)

	outcomes := []model.PlaceOutcome{
		{City: "Smallville", State: "KS", Population: 50_000, Strategy: "skip", SkipReason: model.ReasonBelowThreshold},
		{City: "Springfield", State: "IL", Population: 3_000_000, Strategy: "paginated", Calls: 1, Candidates: 2, Rows: 2},
	}
	for _, o := range outcomes {
		require.NoError(t, s.RecordPlace(ctx, run.ID, o))
	}

	got, err := s.ListPlaces(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, outcomes, got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	_, err = s.CreateRun(ctx, "x.csv")
	require.NoError(t, err)

	_, err = Open(ctx, "mysql", "dsn")
	require.Error(t, err)
}
