// Package source loads the places a sweep visits from a spreadsheet or CSV,
// local or remote.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/ramen-cli/internal/fetcher"
	"github.com/sells-group/ramen-cli/internal/model"
)

// Options configures loading.
type Options struct {
	// Sheet selects an xlsx sheet by name; empty means the first sheet.
	Sheet string
	// Limit keeps only the first Limit places when positive.
	Limit int
}

// FileSource reads places from a path or URL.
type FileSource struct {
	Path     string
	Opts     Options
	Resolver *fetcher.Resolver
	// DownloadDir receives remote inputs; a temp dir is used when empty.
	DownloadDir string
}

// Places loads the input, downloading it first when Path is a URL.
func (s *FileSource) Places(ctx context.Context) ([]model.Place, error) {
	path := s.Path
	if fetcher.IsRemote(path) {
		dir := s.DownloadDir
		if dir == "" {
			tmp, err := os.MkdirTemp("", "ramen-input-*")
			if err != nil {
				return nil, eris.Wrap(err, "source: create download dir")
			}
			defer os.RemoveAll(tmp) //nolint:errcheck
			dir = tmp
		}
		resolver := s.Resolver
		if resolver == nil {
			resolver = fetcher.NewResolver()
		}
		local, err := resolver.Localize(ctx, path, dir)
		if err != nil {
			return nil, err
		}
		path = local
	}
	return Load(path, s.Opts)
}

// Load reads places from a local .xlsx or .csv file.
func Load(path string, opts Options) ([]model.Place, error) {
	var (
		places []model.Place
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		places, err = LoadXLSX(path, opts.Sheet)
	case ".csv":
		places, err = LoadCSV(path)
	default:
		return nil, eris.Errorf("source: unsupported input file %s (want .xlsx or .csv)", path)
	}
	if err != nil {
		return nil, err
	}

	if opts.Limit > 0 && len(places) > opts.Limit {
		places = places[:opts.Limit]
	}
	zap.L().Info("places loaded", zap.String("path", path), zap.Int("places", len(places)))
	return places, nil
}

// record is one input row before type conversion. Tags are the accepted
// (lower-case) header names.
type record struct {
	City       string `csv:"city"`
	State      string `csv:"state"`
	Zipcode    string `csv:"zipcode"`
	Lat        string `csv:"lat"`
	Lng        string `csv:"lng"`
	Population string `csv:"population"`
}

var requiredColumns = []string{"city", "state", "lat", "lng"}

func checkHeader(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, c := range requiredColumns {
		if !have[c] {
			return eris.Errorf("source: missing required column %q", c)
		}
	}
	return nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return out
}

// toPlace converts a record. Rows without a city or usable coordinates are
// rejected; a missing or malformed population counts as zero.
func toPlace(r record) (model.Place, bool) {
	city := norm.NFC.String(strings.TrimSpace(r.City))
	if city == "" {
		return model.Place{}, false
	}

	lat, errLat := parseFloat(r.Lat)
	lng, errLng := parseFloat(r.Lng)
	if errLat != nil || errLng != nil {
		zap.L().Warn("source: skipping row with bad coordinates",
			zap.String("city", city),
			zap.String("lat", r.Lat),
			zap.String("lng", r.Lng),
		)
		return model.Place{}, false
	}

	return model.Place{
		City:       city,
		State:      strings.TrimSpace(r.State),
		Zip:        strings.TrimSpace(r.Zipcode),
		Lat:        lat,
		Lng:        lng,
		Population: parsePopulation(r.Population),
	}, true
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parsePopulation(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// Spreadsheets sometimes store counts as floats.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f)
}
