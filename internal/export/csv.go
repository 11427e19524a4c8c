// Package export owns the final-table file format: a flat CSV with one
// row per hour, overwritten whole on every run. Column names are the
// stable interface to every downstream consumer and must not drift
// across runs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gridhistory/internal/hourly"
)

const timestampLayout = "2006-01-02 15:04:05"

// Table is the final analytic table in column-ordered form.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one hour of the final table.
type Row struct {
	Timestamp time.Time
	Values    []float64
}

// FromHourly lays out the hourly table in output column order: fuels,
// Load, Emissions, the per-fuel emissions sub-columns, Price.
func FromHourly(h hourly.Table) Table {
	t := Table{}
	t.Columns = append(t.Columns, h.Fuels...)
	t.Columns = append(t.Columns, "Load", "Emissions")
	for _, col := range h.EmissionCols {
		t.Columns = append(t.Columns, "Emissions_"+col)
	}
	t.Columns = append(t.Columns, "Price")

	for _, hr := range h.Rows {
		values := make([]float64, 0, len(t.Columns))
		for _, fuel := range h.Fuels {
			values = append(values, hr.Fuel[fuel])
		}
		values = append(values, hr.Load, hr.Emissions)
		for _, col := range h.EmissionCols {
			values = append(values, hr.EmissionsByFuel[col])
		}
		values = append(values, hr.Price)
		t.Rows = append(t.Rows, Row{Timestamp: hr.Hour, Values: values})
	}
	return t
}

// ColumnIndex returns the position of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// DropColumn removes a named column and its values. Missing columns are
// a no-op.
func (t *Table) DropColumn(name string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i := range t.Rows {
		v := t.Rows[i].Values
		t.Rows[i].Values = append(v[:idx], v[idx+1:]...)
	}
}

// AddColumn appends a named column with one value per row.
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %s: %d values for %d rows", name, len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i].Values = append(t.Rows[i].Values, values[i])
	}
	return nil
}

// WriteCSV overwrites path with the table. Fixed-precision float
// formatting keeps reruns on identical input byte-identical.
func WriteCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"Timestamp"}, t.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range t.Rows {
		record[0] = row.Timestamp.Format(timestampLayout)
		for i, v := range row.Values {
			record[i+1] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

// ReadCSV loads a previously written table back, keyed off the header.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || header[0] != "Timestamp" {
		return Table{}, fmt.Errorf("unexpected header %v", header)
	}

	t := Table{Columns: append([]string(nil), header[1:]...)}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row: %w", err)
		}
		ts, err := time.ParseInLocation(timestampLayout, record[0], time.UTC)
		if err != nil {
			return Table{}, fmt.Errorf("bad timestamp %q: %w", record[0], err)
		}
		values := make([]float64, len(record)-1)
		for i, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Table{}, fmt.Errorf("bad value %q in column %s: %w", cell, t.Columns[i], err)
			}
			values[i] = v
		}
		t.Rows = append(t.Rows, Row{Timestamp: ts, Values: values})
	}
	return t, nil
}
