package testutil

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultHeader is the header row of a call-center history sheet
var DefaultHeader = []any{"Date", "Calls", "AHT"}

// NewWorkbook builds an xlsx document whose first sheet holds header followed
// by rows. Cells may be time.Time, numbers, strings or nil.
func NewWorkbook(t *testing.T, header []any, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := rows
	if header != nil {
		all = append([][]any{header}, rows...)
	}
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.Clone(buf.Bytes())
}

// WriteWorkbook stores a workbook built by NewWorkbook in a temp dir and
// returns its path
func WriteWorkbook(t *testing.T, header []any, rows [][]any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.xlsx")
	if err := os.WriteFile(path, NewWorkbook(t, header, rows), 0644); err != nil {
		t.Fatalf("write workbook file: %v", err)
	}
	return path
}

// SeasonalRows returns n consecutive daily Date/Calls/AHT rows starting at
// start. Calls follow a sine wave of the given period around a slow upward
// trend; AHT follows a cosine wave around six minutes.
func SeasonalRows(start time.Time, n, period int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		phase := 2 * math.Pi * float64(i%period) / float64(period)
		calls := 1000 + 0.5*float64(i) + 150*math.Sin(phase)
		aht := 6 + 0.4*math.Cos(phase)
		rows[i] = []any{
			start.AddDate(0, 0, i),
			math.Round(calls*100) / 100,
			math.Round(aht*1000) / 1000,
		}
	}
	return rows
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
