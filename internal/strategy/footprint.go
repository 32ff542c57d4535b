package strategy

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/sells-group/ramen-cli/pkg/google"
)

// Footprint describes the area a strategy's search centres span.
type Footprint struct {
	Bound    orb.Bound
	WidthM   float64 // east-west extent of the search centres
	HeightM  float64 // north-south extent of the search centres
	SpacingM float64 // distance between adjacent grid centres along a parallel
}

// FootprintOf returns the extent covered by the strategy's search centres.
// Direct and paginated strategies collapse to the place centre.
func FootprintOf(center google.LatLng, s Strategy) Footprint {
	c := orb.Point{center.Lng, center.Lat}
	bound := orb.Bound{Min: c, Max: c}
	if s.Kind == Skip {
		return Footprint{Bound: bound}
	}

	for _, p := range GridPoints(center, s.Offsets) {
		bound = bound.Extend(orb.Point{p.Lng, p.Lat})
	}

	fp := Footprint{
		Bound:   bound,
		WidthM:  geo.Distance(orb.Point{bound.Min[0], c[1]}, orb.Point{bound.Max[0], c[1]}),
		HeightM: geo.Distance(orb.Point{c[0], bound.Min[1]}, orb.Point{c[0], bound.Max[1]}),
	}
	if s.Kind == Grid && len(s.Offsets) > 1 {
		fp.SpacingM = fp.WidthM / 2
	}
	return fp
}
