package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/sells-group/ramen-cli/internal/model"
	"github.com/sells-group/ramen-cli/internal/search"
	"github.com/sells-group/ramen-cli/internal/strategy"
	"github.com/sells-group/ramen-cli/pkg/google"
)

// fakeFetcher returns canned outcomes keyed by "lat,lng".
type fakeFetcher struct {
	mu       sync.Mutex
	outcomes map[string]search.Outcome
	err      error
	calls    []google.LatLng
}

func (f *fakeFetcher) Fetch(_ context.Context, center google.LatLng, s strategy.Strategy) (search.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, center)
	if f.err != nil {
		return search.Outcome{}, f.err
	}
	out, ok := f.outcomes[center.String()]
	if !ok {
		return search.Outcome{Calls: s.Calls()}, nil
	}
	return out, nil
}

func (f *fakeFetcher) fetched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeDetails returns a named payload with coordinates for every ID.
type fakeDetails struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeDetails) Details(_ context.Context, placeID string) google.PlaceDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, placeID)
	return google.PlaceDetails{
		Name:     "Shop " + placeID,
		Geometry: &google.Geometry{Location: google.LatLng{Lat: 40, Lng: -90}},
	}
}

// memorySkipLog collects skip records.
type memorySkipLog struct {
	records []model.SkipRecord
}

func (m *memorySkipLog) Append(rec model.SkipRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func candidates(prefix string, n int) []google.Place {
	out := make([]google.Place, n)
	for i := range out {
		out[i] = google.Place{PlaceID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func place(city string, pop int64, lat, lng float64) model.Place {
	return model.Place{City: city, State: "ST", Lat: lat, Lng: lng, Population: pop}
}
