package sink

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ramen-cli/internal/model"
)

const xlsxSheet = "Sheet1"

// WriteXLSX writes rows to a single-sheet workbook with a header row.
func WriteXLSX(path string, rows []model.OutputRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(xlsxSheet)
	if err != nil {
		return eris.Wrap(err, "sink: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.City)
		row.AddCell().SetString(r.State)
		row.AddCell().SetString(r.Zip)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Address)
		row.AddCell().SetString(r.Phone)
		addFloat(row, r.Rating)
		addFloat(row, r.Latitude)
		addFloat(row, r.Longitude)
		row.AddCell().SetString(r.Website)
		row.AddCell().SetString(r.MapsURL)
		row.AddCell().SetString(r.StreetViewURL)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "sink: save xlsx %s", path)
	}
	return nil
}

func addFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
