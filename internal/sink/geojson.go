package sink

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/ramen-cli/internal/model"
)

// WriteGeoJSON writes rows with coordinates as a FeatureCollection of points.
// Feature IDs are the place IDs; the remaining columns become properties.
func WriteGeoJSON(path string, rows []model.OutputRow) error {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	for _, r := range located(rows) {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.PlaceID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{*r.Longitude, *r.Latitude}),
			Properties: map[string]interface{}{
				"city":            r.City,
				"state":           r.State,
				"zip":             r.Zip,
				"name":            r.Name,
				"address":         r.Address,
				"phone":           r.Phone,
				"rating":          r.Rating,
				"website":         r.Website,
				"maps_url":        r.MapsURL,
				"street_view_url": r.StreetViewURL,
			},
		})
	}

	data, err := json.MarshalIndent(&fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "sink: encode geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "sink: write geojson %s", path)
	}
	return nil
}
