// Package verify is the read-only smoke check over the final table.
package verify

import (
	"fmt"
	"io"
	"time"

	"gridhistory/internal/export"
)

const headRows = 5

// HeadRow is one leading (timestamp, load) pair of the table.
type HeadRow struct {
	Timestamp time.Time
	Load      float64
}

// Summary holds the plausibility statistics of a pipeline run.
type Summary struct {
	Rows     int
	PeakLoad float64
	AvgLoad  float64
	Head     []HeadRow
}

// Summarize computes peak and mean of the Load column.
func Summarize(t export.Table) (Summary, error) {
	loadIdx := t.ColumnIndex("Load")
	if loadIdx < 0 {
		return Summary{}, fmt.Errorf("table has no Load column")
	}
	if len(t.Rows) == 0 {
		return Summary{}, fmt.Errorf("table is empty")
	}

	s := Summary{Rows: len(t.Rows)}
	var total float64
	for i, row := range t.Rows {
		load := row.Values[loadIdx]
		total += load
		if load > s.PeakLoad {
			s.PeakLoad = load
		}
		if i < headRows {
			s.Head = append(s.Head, HeadRow{Timestamp: row.Timestamp, Load: load})
		}
	}
	s.AvgLoad = total / float64(len(t.Rows))
	return s, nil
}

// Print writes the summary in the operator-facing console format.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "Timestamp            Load")
	for _, row := range s.Head {
		fmt.Fprintf(w, "%s  %.2f\n", row.Timestamp.Format("2006-01-02 15:04:05"), row.Load)
	}
	fmt.Fprintf(w, "Peak Load: %.2f\n", s.PeakLoad)
	fmt.Fprintf(w, "Avg Load: %.2f\n", s.AvgLoad)
}
