package source

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ramen-cli/internal/model"
)

// LoadXLSX reads places from a workbook. The first row is the header.
func LoadXLSX(path, sheetName string) ([]model.Place, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open xlsx")
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := normalizeHeader(rowToStrings(sheet.Rows[0]))
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var places []model.Place
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(cells) {
				return ""
			}
			return cells[i]
		}
		p, ok := toPlace(record{
			City:       get("city"),
			State:      get("state"),
			Zipcode:    get("zipcode"),
			Lat:        get("lat"),
			Lng:        get("lng"),
			Population: get("population"),
		})
		if ok {
			places = append(places, p)
		}
	}
	return places, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("source: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("source: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
