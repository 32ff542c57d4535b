package sink

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ramen-cli/internal/model"
)

// Table formats.
const (
	FormatXLSX    = "xlsx"
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
	FormatSHP     = "shp"
)

// TableWriter writes the aggregated rows to path.
type TableWriter func(path string, rows []model.OutputRow) error

var tableWriters = map[string]TableWriter{
	FormatXLSX:    WriteXLSX,
	FormatCSV:     WriteCSV,
	FormatGeoJSON: WriteGeoJSON,
	FormatSHP:     WriteShapefile,
}

// TablePath derives the output path for format from base by swapping the
// extension.
func TablePath(base, format string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + format
}

// WriteTables writes rows in every requested format and returns the written
// paths in the order of formats.
func WriteTables(base string, formats []string, rows []model.OutputRow) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{FormatXLSX}
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		write, ok := tableWriters[f]
		if !ok {
			return paths, eris.Errorf("sink: unsupported table format %q", f)
		}

		path := TablePath(base, f)
		if err := ensureParent(path); err != nil {
			return paths, err
		}
		if err := write(path, rows); err != nil {
			return paths, err
		}

		zap.L().Info("table written",
			zap.String("format", f),
			zap.String("path", path),
			zap.Int("rows", len(rows)),
		)
		paths = append(paths, path)
	}
	return paths, nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return eris.Wrapf(os.MkdirAll(dir, 0o755), "sink: create output dir %s", dir)
}

// located returns the rows that carry coordinates. Point formats cannot hold
// the others.
func located(rows []model.OutputRow) []model.OutputRow {
	out := make([]model.OutputRow, 0, len(rows))
	for _, r := range rows {
		if r.Latitude != nil && r.Longitude != nil {
			out = append(out, r)
		}
	}
	if dropped := len(rows) - len(out); dropped > 0 {
		zap.L().Warn("rows without coordinates left out of point export", zap.Int("rows", dropped))
	}
	return out
}
