// Package sink writes the artifacts of a sweep: per-place JSON snapshots, the
// skip log, the aggregated table and the run summary.
package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/ramen-cli/pkg/google"
)

// SnapshotName returns the file name used for a city's snapshot: the city
// name in NFC form with spaces replaced by underscores.
func SnapshotName(city string) string {
	name := norm.NFC.String(strings.TrimSpace(city))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if name == "" {
		name = "_"
	}
	return name + ".json"
}

// WriteSnapshot writes the raw search results for one city as an indented
// JSON array and returns the file path. An existing file is overwritten.
func WriteSnapshot(dir, city string, results []google.Place) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "sink: create snapshot dir %s", dir)
	}

	payloads := make([]json.RawMessage, 0, len(results))
	for _, r := range results {
		payloads = append(payloads, r.Payload())
	}

	data, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "sink: encode snapshot")
	}

	path := filepath.Join(dir, SnapshotName(city))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "sink: write snapshot %s", path)
	}
	return path, nil
}
