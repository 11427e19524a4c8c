package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gridhistory/internal/hourly"
)

func sampleHourly() hourly.Table {
	return hourly.Table{
		Fuels:        []string{"Gas", "Wind"},
		EmissionCols: []string{"Gas"},
		Rows: []hourly.Row{
			{
				Hour:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Fuel:            map[string]float64{"Gas": 20, "Wind": 100},
				Load:            120,
				Emissions:       8.6,
				EmissionsByFuel: map[string]float64{"Gas": 8.6},
				Price:           0,
			},
		},
	}
}

func TestFromHourlyColumnOrder(t *testing.T) {
	table := FromHourly(sampleHourly())
	want := []string{"Gas", "Wind", "Load", "Emissions", "Emissions_Gas", "Price"}
	if len(table.Columns) != len(want) {
		t.Fatalf("columns = %v, want %v", table.Columns, want)
	}
	for i := range want {
		if table.Columns[i] != want[i] {
			t.Fatalf("columns = %v, want %v", table.Columns, want)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := FromHourly(sampleHourly())
	if err := WriteCSV(path, table); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(got.Rows))
	}
	if !got.Rows[0].Timestamp.Equal(table.Rows[0].Timestamp) {
		t.Fatalf("timestamp = %s, want %s", got.Rows[0].Timestamp, table.Rows[0].Timestamp)
	}
	loadIdx := got.ColumnIndex("Load")
	if got.Rows[0].Values[loadIdx] != 120 {
		t.Fatalf("Load = %v, want 120", got.Rows[0].Values[loadIdx])
	}
}

func TestWriteIsByteStable(t *testing.T) {
	dir := t.TempDir()
	table := FromHourly(sampleHourly())

	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	if err := WriteCSV(first, table); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteCSV(second, table); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Fatal("identical tables produced different bytes")
	}
}

func TestReadCSVSurfacesTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.csv")
	content := "Timestamp,Wind,Load,Emissions,Price\n" +
		"2024-01-01 00:00:00,1.0,1.0,0.0,0.0\n" +
		"2024-01-01 01:00:00,2.0,2.0\n" // cut off mid-row
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadCSV(path); err == nil {
		t.Fatal("corrupted file must error, not load as a shorter table")
	}
}

func TestDropAndAddColumn(t *testing.T) {
	table := FromHourly(sampleHourly())
	table.DropColumn("Price")
	if table.ColumnIndex("Price") >= 0 {
		t.Fatal("Price still present after drop")
	}
	if err := table.AddColumn("Price", []float64{42}); err != nil {
		t.Fatalf("add: %v", err)
	}
	idx := table.ColumnIndex("Price")
	if table.Rows[0].Values[idx] != 42 {
		t.Fatalf("Price = %v, want 42", table.Rows[0].Values[idx])
	}

	if err := table.AddColumn("Bad", []float64{1, 2}); err == nil {
		t.Fatal("length mismatch should fail")
	}
}
