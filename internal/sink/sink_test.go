package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ramen-cli/internal/model"
	"github.com/sells-group/ramen-cli/pkg/google"
)

func ptr(v float64) *float64 { return &v }

func sampleRows() []model.OutputRow {
	return []model.OutputRow{
		{
			City: "Springfield", State: "IL", Zip: "62701", PlaceID: "p1",
			Name: "Ramen Ya", Address: "1 Main St", Phone: "(217) 555-0100",
			Rating: ptr(4.5), Latitude: ptr(39.8), Longitude: ptr(-89.6),
			Website:       "https://ramenya.example",
			MapsURL:       "https://www.google.com/maps/search/?api=1&query=39.8,-89.6",
			StreetViewURL: "https://maps.googleapis.com/maps/api/streetview?size=600x300&location=39.8,-89.6&key=k",
		},
		{
			City: "Springfield", State: "IL", PlaceID: "p2", Name: "Noodle Bar",
		},
	}
}

func TestSnapshotName(t *testing.T) {
	assert.Equal(t, "New_York.json", SnapshotName("New York"))
	assert.Equal(t, "Springfield.json", SnapshotName(" Springfield "))
	// Decomposed and composed forms map to the same file.
	assert.Equal(t, SnapshotName("San José"), SnapshotName("San José"))
	assert.Equal(t, "_.json", SnapshotName(""))
}

func TestWriteSnapshot_RawPayloads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "json_results")

	var p google.Place
	raw := `{"place_id":"p1","name":"Ramen Ya","price_level":2}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	path, err := WriteSnapshot(dir, "New York", []google.Place{p, {PlaceID: "p2", Name: "Built"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "New_York.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "indented array")

	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0]["place_id"])
	assert.EqualValues(t, 2, got[0]["price_level"], "fields outside the typed model survive")
	assert.Equal(t, "Built", got[1]["name"])
}

func TestWriteSnapshot_Empty(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSnapshot(dir, "Nowhere", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestSkipLog_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "skipped_cities.log")
	l, err := NewSkipLog(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.Path())

	require.NoError(t, l.Append(model.SkipRecord{City: "Smallville", State: "KS", Reason: model.ReasonBelowThreshold}))
	require.NoError(t, l.Append(model.SkipRecord{City: "Gotham", State: "NJ", Reason: model.APIErrorReason("over quota")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Smallville, KS — Population below threshold\nGotham, NJ — API error: over quota\n",
		string(data))

	// A second logger appends rather than truncates.
	l2, err := NewSkipLog(path)
	require.NoError(t, err)
	require.NoError(t, l2.Append(model.SkipRecord{City: "Metropolis", State: "IL", Reason: model.ReasonNoResults}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestTablePath(t *testing.T) {
	assert.Equal(t, "ramen_shops_usa.xlsx", TablePath("ramen_shops_usa.xlsx", "xlsx"))
	assert.Equal(t, "out/ramen.csv", TablePath("out/ramen.xlsx", "csv"))
	assert.Equal(t, "ramen.geojson", TablePath("ramen", "geojson"))
}

func TestWriteTables_UnsupportedFormat(t *testing.T) {
	_, err := WriteTables(filepath.Join(t.TempDir(), "t.xlsx"), []string{"parquet"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parquet")
}

func TestWriteTables_AllFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "ramen_shops_usa.xlsx")
	paths, err := WriteTables(base, []string{"xlsx", "CSV", "geojson", "shp"}, sampleRows())
	require.NoError(t, err)
	require.Len(t, paths, 4)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramen.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRows()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	rows := f.Sheets[0].Rows
	require.Len(t, rows, 3)

	var header []string
	for _, c := range rows[0].Cells {
		header = append(header, c.String())
	}
	assert.Equal(t, model.Columns, header)

	assert.Equal(t, "Springfield", rows[1].Cells[0].String())
	assert.Equal(t, "Ramen Ya", rows[1].Cells[3].String())
	rating, err := rows[1].Cells[6].Float()
	require.NoError(t, err)
	assert.Equal(t, 4.5, rating)
	assert.Equal(t, "Noodle Bar", rows[2].Cells[3].String())
	if len(rows[2].Cells) > 7 {
		assert.Empty(t, rows[2].Cells[7].String(), "missing latitude stays blank")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramen.csv")
	require.NoError(t, WriteCSV(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(model.Columns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Springfield,IL,62701,Ramen Ya,1 Main St,(217) 555-0100,4.5,39.8,-89.6,"))
	assert.Equal(t, "Springfield,IL,,Noodle Bar,,,,,,,,", lines[2])
}

func TestWriteGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramen.geojson")
	require.NoError(t, WriteGeoJSON(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1, "rows without coordinates are left out")
	f := fc.Features[0]
	assert.Equal(t, "p1", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{-89.6, 39.8}, f.Geometry.Coordinates)
	assert.Equal(t, "Ramen Ya", f.Properties["name"])
	assert.Equal(t, 4.5, f.Properties["rating"])
}

func TestWriteShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ramen.shp")
	require.NoError(t, WriteShapefile(path, sampleRows()))

	dir := filepath.Dir(path)
	assert.FileExists(t, filepath.Join(dir, "ramen.dbf"))
	assert.NoFileExists(t, filepath.Join(dir, "ramendbf"))

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Len(t, r.Fields(), 11)

	count := 0
	for r.Next() {
		_, shape := r.Shape()
		pt, ok := shape.(*shp.Point)
		require.True(t, ok)
		assert.InDelta(t, -89.6, pt.X, 1e-9)
		assert.InDelta(t, 39.8, pt.Y, 1e-9)
		assert.Equal(t, "Ramen Ya", strings.TrimSpace(strings.TrimRight(r.Attribute(4), "\x00")))
		count++
	}
	assert.Equal(t, 1, count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "caf", truncate("café", 4))
}

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary", "run.yaml")
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	in := Summary{
		RunID:           "r1",
		StartedAt:       start,
		FinishedAt:      start.Add(90 * time.Second),
		Input:           "cities.xlsx",
		Places:          5,
		Searched:        3,
		Skipped:         2,
		SkipReasons:     map[string]int{model.ReasonBelowThreshold: 2},
		Rows:            12,
		TextSearchCalls: 5,
		DetailsCalls:    12,
		EstimatedCost:   0.364,
		Outputs:         []string{"ramen.xlsx"},
	}
	require.NoError(t, WriteSummary(path, in))

	got, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.RunID)
	assert.True(t, got.StartedAt.Equal(start))
	assert.Equal(t, 90*time.Second, got.Duration())
	assert.Equal(t, 2, got.SkipReasons[model.ReasonBelowThreshold])
	assert.Equal(t, 12, got.Rows)
	assert.InDelta(t, 0.364, got.EstimatedCost, 1e-9)
}
