package pipeline

import (
	"github.com/sells-group/ramen-cli/internal/cost"
	"github.com/sells-group/ramen-cli/internal/model"
	"github.com/sells-group/ramen-cli/internal/strategy"
)

// MaxResultsPerCall is the most candidates one text search page returns.
const MaxResultsPerCall = 20

// PlannedPlace is the offline decision for one place.
type PlannedPlace struct {
	Place     model.Place
	Strategy  strategy.Strategy
	Calls     int
	Footprint strategy.Footprint
}

// Plan is an offline estimate of a sweep. No API call is issued to build it.
type Plan struct {
	Places     []PlannedPlace
	Strategies map[string]int
	Calls      int64
	Cost       cost.Breakdown
}

// BuildPlan decides the strategy for every place and estimates the worst
// case spend, assuming every page comes back full. maxResults caps details
// lookups per place when perPlace is set and across the run otherwise.
func BuildPlan(places []model.Place, sel *strategy.Selector, calc *cost.Calculator, maxResults int, perPlace bool) Plan {
	plan := Plan{Strategies: map[string]int{}}
	var details int64
	for _, p := range places {
		s := sel.Select(p.Population)
		pp := PlannedPlace{
			Place:     p,
			Strategy:  s,
			Calls:     s.Calls(),
			Footprint: strategy.FootprintOf(p.Location(), s),
		}
		plan.Places = append(plan.Places, pp)
		plan.Strategies[s.Kind.String()]++
		plan.Calls += int64(pp.Calls)

		candidates := int64(pp.Calls * MaxResultsPerCall)
		if perPlace && maxResults > 0 {
			candidates = min(candidates, int64(maxResults))
		}
		details += candidates
	}
	if !perPlace && maxResults > 0 {
		details = min(details, int64(maxResults))
	}
	plan.Cost = calc.Estimate(plan.Calls, details)
	return plan
}
