package sink

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ramen-cli/internal/model"
)

// dBase field names are limited to 10 characters.
var shpFields = []shp.Field{
	shp.StringField("City", 64),
	shp.StringField("State", 8),
	shp.StringField("Zip", 10),
	shp.StringField("PlaceID", 64),
	shp.StringField("Name", 128),
	shp.StringField("Address", 254),
	shp.StringField("Phone", 32),
	shp.FloatField("Rating", 4, 1),
	shp.StringField("Website", 254),
	shp.StringField("MapsURL", 254),
	shp.StringField("StreetView", 254),
}

// WriteShapefile writes rows with coordinates as an ESRI point shapefile. The
// .shx and .dbf companions are written next to path.
func WriteShapefile(path string, rows []model.OutputRow) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "sink: create shapefile %s", path)
	}
	werr := writeShapes(w, rows)
	w.Close()
	if werr != nil {
		return werr
	}

	// go-shp names the attribute table "<base>dbf", without the dot.
	base := shapefileBase(path)
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return eris.Wrapf(err, "sink: rename shapefile attribute table for %s", path)
	}
	return nil
}

func shapefileBase(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".shp") {
		return path[:len(path)-4]
	}
	return path
}

func writeShapes(w *shp.Writer, rows []model.OutputRow) error {
	if err := w.SetFields(shpFields); err != nil {
		return eris.Wrap(err, "sink: set shapefile fields")
	}

	for _, r := range located(rows) {
		n := int(w.Write(&shp.Point{X: *r.Longitude, Y: *r.Latitude}))

		values := []string{r.City, r.State, r.Zip, r.PlaceID, r.Name, r.Address, r.Phone}
		for i, v := range values {
			if err := w.WriteAttribute(n, i, truncate(v, int(shpFields[i].Size))); err != nil {
				return eris.Wrapf(err, "sink: write shapefile attribute %d", i)
			}
		}
		if r.Rating != nil {
			if err := w.WriteAttribute(n, 7, *r.Rating); err != nil {
				return eris.Wrap(err, "sink: write shapefile rating")
			}
		}
		for i, v := range []string{r.Website, r.MapsURL, r.StreetViewURL} {
			field := 8 + i
			if err := w.WriteAttribute(n, field, truncate(v, int(shpFields[field].Size))); err != nil {
				return eris.Wrapf(err, "sink: write shapefile attribute %d", field)
			}
		}
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
