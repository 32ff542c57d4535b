package enrich

import (
	"github.com/sells-group/ramen-cli/internal/dedup"
	"github.com/sells-group/ramen-cli/internal/model"
)

// State accumulates everything a run produces. It is threaded explicitly
// through the stages and is not safe for concurrent mutation; the runner
// serialises enrichment.
type State struct {
	Seen       *dedup.SeenSet
	Rows       []model.OutputRow
	Skips      []model.SkipRecord
	Lookups    int
	Duplicates int
	Visited    int
	Searched   int
}

// NewState returns an empty run state.
func NewState(dedupEnabled bool) *State {
	return &State{Seen: dedup.NewSeenSet(dedupEnabled)}
}

// Skip records a skipped place.
func (s *State) Skip(p model.Place, reason string) model.SkipRecord {
	rec := model.SkipRecord{City: p.City, State: p.State, Reason: reason}
	s.Skips = append(s.Skips, rec)
	return rec
}
