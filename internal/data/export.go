package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"field-dash/internal/model"

	"github.com/xuri/excelize/v2"
)

// Table is a header plus string rows, the common shape of every download.
type Table struct {
	Header []string
	Rows   [][]string
}

// AveragesTable renders per-crop average growing days.
func AveragesTable(avgs []model.CropAverage) Table {
	t := Table{Header: []string{ColCrop, ColTotalDays}, Rows: make([][]string, 0, len(avgs))}
	for _, a := range avgs {
		t.Rows = append(t.Rows, []string{a.Crop, fmtFloat(a.TotalDays)})
	}
	return t
}

// RecordsTable selects rows of the loaded frame, keeping every source column
// plus the derived date columns.
func RecordsTable(ds *CropDataset, rows []int) Table {
	t := Table{Header: ds.Frame.Names(), Rows: [][]string{}}
	if len(rows) == 0 {
		return t
	}
	recs := ds.Frame.Subset(rows).Records()
	if len(recs) > 1 {
		t.Rows = recs[1:]
	}
	return t
}

// WriteRecordsCSV streams the selected frame rows as CSV.
func WriteRecordsCSV(w io.Writer, ds *CropDataset, rows []int) error {
	if len(rows) == 0 {
		return WriteTableCSV(w, Table{Header: ds.Frame.Names()})
	}
	sub := ds.Frame.Subset(rows)
	if sub.Err != nil {
		return fmt.Errorf("failed to select rows: %w", sub.Err)
	}
	return sub.WriteCSV(w)
}

func WriteTableCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableXLSX writes t as a single-sheet workbook. Cells that parse as
// numbers are stored as numbers.
func WriteTableXLSX(w io.Writer, sheet string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			if x, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(x) {
				cells[i] = x
			} else {
				cells[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// HistoryTable renders histories in long format, one row per symbol and day.
func HistoryTable(histories []*model.PriceHistory) Table {
	t := Table{Header: []string{
		"date",
		"symbol",
		"open",
		"high",
		"low",
		"close",
		"adj_close",
		"volume",
	}}
	for _, h := range histories {
		for _, b := range h.Bars {
			t.Rows = append(t.Rows, []string{
				fmtTime(b.Date),
				h.Symbol,
				fmtFloat(b.Open),
				fmtFloat(b.High),
				fmtFloat(b.Low),
				fmtFloat(b.Close),
				fmtFloat(b.AdjClose),
				strconv.FormatInt(b.Volume, 10),
			})
		}
	}
	return t
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
