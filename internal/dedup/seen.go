// Package dedup tracks which place identifiers have already been emitted
// during a run.
package dedup

import (
	"sync"
)

// SeenSet is a run-scoped set of place IDs. It only grows. A disabled set
// admits every identifier and records nothing.
type SeenSet struct {
	mu       sync.Mutex
	ids      map[string]struct{}
	disabled bool
}

// NewSeenSet returns an empty set. When enabled is false every Admit succeeds.
func NewSeenSet(enabled bool) *SeenSet {
	return &SeenSet{ids: make(map[string]struct{}), disabled: !enabled}
}

// Admit reports whether id has not been seen before, recording it if so. A
// disabled set admits everything; an enabled one never admits an empty id.
func (s *SeenSet) Admit(id string) bool {
	if s.disabled {
		return true
	}
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Enabled reports whether the set filters duplicates.
func (s *SeenSet) Enabled() bool {
	return !s.disabled
}
