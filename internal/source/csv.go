package source

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ramen-cli/internal/model"
)

// LoadCSV reads places from a CSV file with a header row. Header names are
// matched case-insensitively and unknown columns are ignored.
func LoadCSV(path string) ([]model.Place, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "source: read csv header")
	}
	header = normalizeHeader(header)
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	dec, err := csvutil.NewDecoder(r, header...)
	if err != nil {
		return nil, eris.Wrap(err, "source: csv decoder")
	}

	var places []model.Place
	for {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrap(err, "source: decode csv row")
		}
		if p, ok := toPlace(rec); ok {
			places = append(places, p)
		}
	}
	return places, nil
}
