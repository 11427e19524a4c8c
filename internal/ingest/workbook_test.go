package ingest

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// writeWorkbook builds a minimal fuel-mix workbook with the given month
// sheets, each holding a header row and data rows.
func writeWorkbook(t *testing.T, path string, sheets map[string][][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestScanReadsMonthSheets(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "IntGenbyFuel2024.xlsx"), map[string][][]interface{}{
		"Jan": {
			{"Date", "Fuel", "Settlement Type", "0:15", "Total"},
			{"2024-01-01", "Wind", "Final", 12.5, 12.5},
		},
		"Notes": {
			{"free", "text"},
		},
	})

	loader := NewLoader("intgenbyfuel", 2020, 2024, discard())
	sheets, stats, err := loader.Scan(dir, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d sheets, want 1 (Notes is not a month sheet)", len(sheets))
	}
	if stats.WorkbooksRead != 1 || stats.SheetsRead != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	s := sheets[0]
	if s.Sheet != "Jan" || s.Year != 2024 {
		t.Fatalf("sheet %+v", s)
	}
	if len(s.Rows) != 1 || s.Rows[0][1] != "Wind" {
		t.Fatalf("rows = %v", s.Rows)
	}
}

func TestScanSkipsSheetWithoutFuelColumn(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "intgenbyfuel2023.xlsx"), map[string][][]interface{}{
		"Feb": {
			{"Date", "Resource", "0:15"},
			{"2023-02-01", "Wind", 1},
		},
	})

	loader := NewLoader("intgenbyfuel", 2020, 2024, discard())
	sheets, stats, err := loader.Scan(dir, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sheets) != 0 {
		t.Fatalf("got %d sheets, want 0", len(sheets))
	}
	if stats.SheetsSkipped != 1 {
		t.Fatalf("sheets skipped = %d, want 1", stats.SheetsSkipped)
	}
}

func TestScanIgnoresOutOfRangeYears(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "IntGenbyFuel2031.xlsx"), map[string][][]interface{}{
		"Jan": {
			{"Date", "Fuel", "0:15"},
			{"2031-01-01", "Wind", 1},
		},
	})

	loader := NewLoader("intgenbyfuel", 2020, 2024, discard())
	if _, _, err := loader.Scan(dir, nil); err == nil {
		t.Fatal("scan with no in-range workbooks should report no matching years")
	}
}

func TestScanFailsWhenNothingMatches(t *testing.T) {
	loader := NewLoader("intgenbyfuel", 2020, 2024, discard())
	if _, _, err := loader.Scan(t.TempDir(), nil); err == nil {
		t.Fatal("empty directory should report no matching years")
	}
}
