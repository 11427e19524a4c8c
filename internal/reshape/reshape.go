// Package reshape turns raw per-sheet report matrices into long interval
// records and pivots them back into one row per timestamp with one value
// per fuel type.
package reshape

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gridhistory/internal/ingest"
)

// excludedColumns are known non-data columns in the report sheets.
var excludedColumns = map[string]bool{
	"Settlement Type": true,
	"Total":           true,
}

// Record is one long-form interval reading. Label keeps the raw
// interval column header, which distinguishes the repeated clock times
// of a fall-back day ("1:15" vs "1:15 (DST)") after both normalize to
// the same timestamp.
type Record struct {
	Timestamp time.Time
	Label     string
	Fuel      string
	MW        float64
}

// Row is one pivoted row: every fuel observed at one timestamp.
type Row struct {
	Timestamp time.Time
	Values    map[string]float64
}

// Table is the pivoted form of one sheet. Fuels is sorted; Rows are in
// ascending timestamp order, with one row per (timestamp, interval
// label) so a repeated fall-back hour keeps both readings. Duplicate
// fuel readings within one interval have been summed, since some
// reports list a fuel twice in split sub-categories.
type Table struct {
	Fuels []string
	Rows  []Row
}

// Melt converts a raw sheet table from wide to long form. Every column
// except Date, Fuel, Settlement Type and Total is an interval label.
// Records whose date+label cannot be parsed are dropped and counted, as
// are non-numeric readings; empty cells produce no record.
func Melt(sheet ingest.SheetTable) (records []Record, dropped int, err error) {
	dateIdx, fuelIdx := -1, -1
	for i, col := range sheet.Header {
		switch col {
		case "Date":
			dateIdx = i
		case "Fuel":
			fuelIdx = i
		}
	}
	if dateIdx < 0 || fuelIdx < 0 {
		return nil, 0, fmt.Errorf("sheet %s of %s: missing Date or Fuel column", sheet.Sheet, sheet.File)
	}

	for _, row := range sheet.Rows {
		if dateIdx >= len(row) || fuelIdx >= len(row) {
			continue
		}
		dateCell := row[dateIdx]
		fuel := strings.TrimSpace(row[fuelIdx])
		if dateCell == "" && fuel == "" {
			continue
		}

		for i, col := range sheet.Header {
			if i == dateIdx || i == fuelIdx || excludedColumns[col] || i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			mw, convErr := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if convErr != nil {
				dropped++
				continue
			}
			ts, tsErr := ParseInterval(dateCell, col)
			if tsErr != nil {
				dropped++
				continue
			}
			records = append(records, Record{Timestamp: ts, Label: col, Fuel: fuel, MW: mw})
		}
	}
	return records, dropped, nil
}

// Pivot groups long records by (timestamp, interval label), one column
// per fuel. Values for the same (timestamp, label, fuel) sum rather
// than overwrite. Keying on the raw label keeps the two readings of a
// repeated fall-back clock hour as separate rows, so a later mean
// aggregation divides by the true reading count.
func Pivot(records []Record) Table {
	type intervalKey struct {
		ts    time.Time
		label string
	}
	byInterval := make(map[intervalKey]map[string]float64)
	fuelSet := make(map[string]bool)

	for _, rec := range records {
		key := intervalKey{ts: rec.Timestamp, label: rec.Label}
		values, ok := byInterval[key]
		if !ok {
			values = make(map[string]float64)
			byInterval[key] = values
		}
		values[rec.Fuel] += rec.MW
		fuelSet[rec.Fuel] = true
	}

	table := Table{
		Fuels: make([]string, 0, len(fuelSet)),
		Rows:  make([]Row, 0, len(byInterval)),
	}
	for fuel := range fuelSet {
		table.Fuels = append(table.Fuels, fuel)
	}
	sort.Strings(table.Fuels)

	keys := make([]intervalKey, 0, len(byInterval))
	for key := range byInterval {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].ts.Equal(keys[j].ts) {
			return keys[i].ts.Before(keys[j].ts)
		}
		return keys[i].label < keys[j].label
	})

	for _, key := range keys {
		table.Rows = append(table.Rows, Row{Timestamp: key.ts, Values: byInterval[key]})
	}
	return table
}
