// Package cost estimates Places API spend from call counts.
package cost

// Rates holds per-call Places pricing in USD.
type Rates struct {
	TextSearch float64 `yaml:"text_search" mapstructure:"text_search"`
	Details    float64 `yaml:"details" mapstructure:"details"`
}

// DefaultRates returns the list prices for Text Search and Place Details.
func DefaultRates() Rates {
	return Rates{
		TextSearch: 0.032,
		Details:    0.017,
	}
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// TextSearch computes the cost of n text search calls.
func (c *Calculator) TextSearch(n int64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * c.rates.TextSearch
}

// Details computes the cost of n details lookups.
func (c *Calculator) Details(n int64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * c.rates.Details
}

// Total computes the combined cost of both endpoints.
func (c *Calculator) Total(textSearch, details int64) float64 {
	return c.TextSearch(textSearch) + c.Details(details)
}

// Breakdown is a cost estimate split by endpoint.
type Breakdown struct {
	TextSearchCalls int64   `json:"text_search_calls" yaml:"text_search_calls"`
	DetailsCalls    int64   `json:"details_calls" yaml:"details_calls"`
	TextSearchCost  float64 `json:"text_search_cost" yaml:"text_search_cost"`
	DetailsCost     float64 `json:"details_cost" yaml:"details_cost"`
	Total           float64 `json:"total" yaml:"total"`
}

// Estimate builds a Breakdown for the given call counts.
func (c *Calculator) Estimate(textSearch, details int64) Breakdown {
	b := Breakdown{
		TextSearchCalls: textSearch,
		DetailsCalls:    details,
		TextSearchCost:  c.TextSearch(textSearch),
		DetailsCost:     c.Details(details),
	}
	b.Total = b.TextSearchCost + b.DetailsCost
	return b
}
