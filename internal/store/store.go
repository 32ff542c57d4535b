// Package store keeps a ledger of sweeps and their per-place outcomes.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ramen-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the run ledger.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, input string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Places
	RecordPlace(ctx context.Context, runID string, outcome model.PlaceOutcome) error
	ListPlaces(ctx context.Context, runID string) ([]model.PlaceOutcome, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver, migrated and ready for use.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "sqlite":
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

const defaultListLimit = 100
