// Package strategy maps a place's population to the search approach used for it.
package strategy

import (
	"github.com/sells-group/ramen-cli/pkg/google"
)

// Kind enumerates the search approaches.
type Kind int

const (
	// Skip means the place is not searched at all.
	Skip Kind = iota
	// Direct is a single bounded-radius search.
	Direct
	// Paginated follows next-page tokens after the first search.
	Paginated
	// Grid searches a 3x3 lattice of points around the centre.
	Grid
)

func (k Kind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Direct:
		return "direct"
	case Paginated:
		return "paginated"
	case Grid:
		return "grid"
	default:
		return "unknown"
	}
}

// Thresholds are the population cut-offs between strategies.
type Thresholds struct {
	Min           int64 `yaml:"min" mapstructure:"min"`
	PaginationMin int64 `yaml:"pagination_min" mapstructure:"pagination_min"`
	PaginationMax int64 `yaml:"pagination_max" mapstructure:"pagination_max"`
	GridMin       int64 `yaml:"grid_min" mapstructure:"grid_min"`
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Min:           100_000,
		PaginationMin: 1_000_000,
		PaginationMax: 5_000_000,
		GridMin:       5_000_001,
	}
}

// DefaultGridStep is the angular spacing of grid points, roughly 5 km.
const DefaultGridStep = 0.045

// DefaultMaxExtraPages is the number of continuation pages after the first.
const DefaultMaxExtraPages = 2

// Offset is a displacement from the place centre in degrees.
type Offset struct {
	DLat float64
	DLng float64
}

// Strategy is the decision for one place.
type Strategy struct {
	Kind          Kind
	MaxExtraPages int
	Offsets       []Offset
}

// Selector decides strategies. The zero value is not useful; use NewSelector.
type Selector struct {
	thresholds    Thresholds
	maxExtraPages int
	offsets       []Offset
}

// NewSelector builds a Selector. Non-positive step or page counts fall back
// to the defaults.
func NewSelector(t Thresholds, gridStep float64, maxExtraPages int) *Selector {
	if gridStep <= 0 {
		gridStep = DefaultGridStep
	}
	if maxExtraPages < 0 {
		maxExtraPages = DefaultMaxExtraPages
	}
	return &Selector{
		thresholds:    t,
		maxExtraPages: maxExtraPages,
		offsets:       GridOffsets(gridStep),
	}
}

// Select returns the strategy for a population. Negative populations are
// treated as zero.
func (s *Selector) Select(pop int64) Strategy {
	if pop < 0 {
		pop = 0
	}
	t := s.thresholds
	switch {
	case pop < t.Min:
		return Strategy{Kind: Skip}
	case pop >= t.PaginationMin && pop <= t.PaginationMax:
		return Strategy{Kind: Paginated, MaxExtraPages: s.maxExtraPages}
	case pop >= t.GridMin:
		offsets := make([]Offset, len(s.offsets))
		copy(offsets, s.offsets)
		return Strategy{Kind: Grid, Offsets: offsets}
	default:
		return Strategy{Kind: Direct}
	}
}

// GridOffsets returns the 3x3 cross product {-step,0,+step} x {-step,0,+step},
// latitude offset in the outer loop. The centre is included.
func GridOffsets(step float64) []Offset {
	steps := []float64{-step, 0, step}
	offsets := make([]Offset, 0, len(steps)*len(steps))
	for _, dLat := range steps {
		for _, dLng := range steps {
			offsets = append(offsets, Offset{DLat: dLat, DLng: dLng})
		}
	}
	return offsets
}

// GridPoints applies offsets to a centre.
func GridPoints(center google.LatLng, offsets []Offset) []google.LatLng {
	points := make([]google.LatLng, len(offsets))
	for i, o := range offsets {
		points[i] = google.LatLng{Lat: center.Lat + o.DLat, Lng: center.Lng + o.DLng}
	}
	return points
}

// Calls returns the number of Text Search calls the strategy issues at most.
func (s Strategy) Calls() int {
	switch s.Kind {
	case Direct:
		return 1
	case Paginated:
		return 1 + s.MaxExtraPages
	case Grid:
		return len(s.Offsets)
	default:
		return 0
	}
}
