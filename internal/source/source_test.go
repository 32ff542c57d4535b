package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ramen-cli/internal/model"
)

func writeXLSX(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Cities")
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	require.NoError(t, f.Save(path))
}

const citiesCSV = `City,State,Zipcode,Lat,Lng,Population,County
Springfield,IL,62701,39.78,-89.65,3000000,Sangamon
Smallville,KS,,38.5,-98.0,50000,
New York,NY,10001,40.71,-74.0,"8,336,817",
Nowhere,ZZ,,not-a-number,0,10,
`

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(citiesCSV), 0o644))

	places, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, places, 3, "row with bad coordinates is dropped")

	assert.Equal(t, model.Place{City: "Springfield", State: "IL", Zip: "62701", Lat: 39.78, Lng: -89.65, Population: 3_000_000}, places[0])
	assert.Equal(t, "", places[1].Zip)
	assert.Equal(t, int64(50_000), places[1].Population)
	assert.Equal(t, int64(8_336_817), places[2].Population)
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("city,state,lat\nA,B,1\n"), 0o644))

	_, err := Load(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lng")
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.xlsx")
	writeXLSX(t, path, [][]string{
		{"city", "state", "lat", "lng", "population", "zipcode"},
		{"Springfield", "IL", "39.78", "-89.65", "3000000", "62701"},
		{"Metropolis", "IL", "37.15", "-88.73", "", ""},
		{"", "IL", "1", "1", "1", ""},
	})

	places, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Springfield", places[0].City)
	assert.Equal(t, "62701", places[0].Zip)
	assert.Equal(t, int64(3_000_000), places[0].Population)
	assert.Zero(t, places[1].Population, "missing population defaults to zero")
}

func TestLoadXLSX_SheetByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.xlsx")
	writeXLSX(t, path, [][]string{
		{"City", "State", "Lat", "Lng", "Population"},
		{"Springfield", "IL", "39.78", "-89.65", "3000000"},
	})

	places, err := Load(path, Options{Sheet: "Cities"})
	require.NoError(t, err)
	assert.Len(t, places, 1)

	_, err = Load(path, Options{Sheet: "Missing"})
	require.Error(t, err)
}

func TestLoad_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(citiesCSV), 0o644))

	places, err := Load(path, Options{Limit: 2})
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Smallville", places[1].City)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("cities.parquet", Options{})
	require.Error(t, err)
}

func TestParsePopulation(t *testing.T) {
	assert.Equal(t, int64(0), parsePopulation(""))
	assert.Equal(t, int64(1200), parsePopulation("1,200"))
	assert.Equal(t, int64(3000000), parsePopulation("3e+06"))
	assert.Equal(t, int64(0), parsePopulation("many"))
	assert.Equal(t, int64(0), parsePopulation("-5.5"))
}

func TestFileSource_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/cities.csv", r.URL.Path)
		_, _ = w.Write([]byte(citiesCSV))
	}))
	defer srv.Close()

	s := &FileSource{
		Path:        srv.URL + "/data/cities.csv",
		Opts:        Options{Limit: 1},
		DownloadDir: t.TempDir(),
	}
	places, err := s.Places(context.Background())
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Springfield", places[0].City)
}

func TestFileSource_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(citiesCSV), 0o644))

	s := &FileSource{Path: path}
	places, err := s.Places(context.Background())
	require.NoError(t, err)
	assert.Len(t, places, 3)
}
