package search

import (
	"context"
	"sync"

	"github.com/sells-group/ramen-cli/pkg/google"
)

type searchCall struct {
	Location  google.LatLng
	Radius    int
	PageToken string
}

// fakeSearcher replays responses in order and records every call.
type fakeSearcher struct {
	mu        sync.Mutex
	calls     []searchCall
	responses []fakeResponse
}

type fakeResponse struct {
	resp *google.TextSearchResponse
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, location google.LatLng, radius int, pageToken string) (*google.TextSearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{Location: location, Radius: radius, PageToken: pageToken})
	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		return &google.TextSearchResponse{}, nil
	}
	r := f.responses[idx]
	if r.resp == nil && r.err == nil {
		return &google.TextSearchResponse{}, nil
	}
	if r.resp == nil {
		return &google.TextSearchResponse{}, r.err
	}
	return r.resp, r.err
}

// countingPacer counts waits without sleeping.
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func places(ids ...string) []google.Place {
	out := make([]google.Place, len(ids))
	for i, id := range ids {
		out[i] = google.Place{PlaceID: id, Name: "Shop " + id}
	}
	return out
}

func ids(ps []google.Place) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.PlaceID
	}
	return out
}
