package sink

import (
	"encoding/csv"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ramen-cli/internal/model"
)

// csvRow mirrors model.Columns.
type csvRow struct {
	City          string   `csv:"City"`
	State         string   `csv:"State"`
	Zip           string   `csv:"Zip"`
	Name          string   `csv:"Name"`
	Address       string   `csv:"Address"`
	Phone         string   `csv:"Phone"`
	Rating        *float64 `csv:"Rating"`
	Latitude      *float64 `csv:"Latitude"`
	Longitude     *float64 `csv:"Longitude"`
	Website       string   `csv:"Website"`
	MapsURL       string   `csv:"Maps URL"`
	StreetViewURL string   `csv:"Street View URL"`
}

// WriteCSV writes rows as CSV with a header row.
func WriteCSV(path string, rows []model.OutputRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "sink: create csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(csvRow{}); err != nil {
		return eris.Wrap(err, "sink: encode csv header")
	}
	for _, r := range rows {
		if err := enc.Encode(csvRow{
			City:          r.City,
			State:         r.State,
			Zip:           r.Zip,
			Name:          r.Name,
			Address:       r.Address,
			Phone:         r.Phone,
			Rating:        r.Rating,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
			Website:       r.Website,
			MapsURL:       r.MapsURL,
			StreetViewURL: r.StreetViewURL,
		}); err != nil {
			return eris.Wrap(err, "sink: encode csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "sink: flush csv")
	}
	return eris.Wrap(f.Close(), "sink: close csv")
}
