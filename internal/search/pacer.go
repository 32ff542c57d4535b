package search

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Pacer inserts the fixed delay required between dependent API calls: page
// tokens only become valid a short while after they are issued, and grid
// points are throttled to respect quota.
type Pacer interface {
	Wait(ctx context.Context) error
}

// SleepPacer sleeps for a fixed interval.
type SleepPacer struct {
	Interval time.Duration
}

// Wait blocks for the interval or until ctx is done.
func (p SleepPacer) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return nil
	}
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "search: pacing interrupted")
	case <-timer.C:
		return nil
	}
}

// NopPacer never waits.
type NopPacer struct{}

// Wait returns immediately.
func (NopPacer) Wait(context.Context) error { return nil }
