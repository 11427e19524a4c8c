// Package pricing loads yearly settlement-price series for one
// reference node and merges them onto the hourly analytic table.
package pricing

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Point is one hourly settlement price at the reference node.
type Point struct {
	Hour  time.Time
	Price float64
}

// Stats counts price files touched per run.
type Stats struct {
	FilesLoaded  int
	FilesMissing int
	FilesSkipped int
	Points       int
}

// Loader reads per-year price files. Files are 5-minute, multi-node
// settlement price dumps; the column naming changed across years, so the
// loader branches per recognized schema variant.
type Loader struct {
	node      string
	startYear int
	endYear   int
	logger    *log.Logger
}

// NewLoader creates a price loader filtering to the given pricing node.
func NewLoader(node string, startYear, endYear int, logger *log.Logger) *Loader {
	return &Loader{node: node, startYear: startYear, endYear: endYear, logger: logger}
}

// timeLayouts cover offset-aware and naive price timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Load reads every year file present under dir, filters to the
// reference node, resamples each to hourly mean and concatenates the
// years into one ascending series. Missing years and unrecognized
// schemas are reported and skipped, never fatal.
func (l *Loader) Load(dir string) ([]Point, Stats) {
	var stats Stats
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)

	for year := l.startYear; year <= l.endYear; year++ {
		path := filepath.Join(dir, fmt.Sprintf("ercot_rtm_%d.csv", year))
		if _, err := os.Stat(path); err != nil {
			l.logger.Printf("warning: file not found for %d: %s", year, path)
			stats.FilesMissing++
			continue
		}
		l.logger.Printf("processing %d...", year)
		if err := l.loadFile(path, sums, counts); err != nil {
			l.logger.Printf("warning: skipping %s: %v", path, err)
			stats.FilesSkipped++
			continue
		}
		stats.FilesLoaded++
	}

	points := make([]Point, 0, len(sums))
	for hour, sum := range sums {
		points = append(points, Point{Hour: hour, Price: sum / float64(counts[hour])})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Hour.Before(points[j].Hour) })
	stats.Points = len(points)
	return points, stats
}

func (l *Loader) loadFile(path string, sums map[time.Time]float64, counts map[time.Time]int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	locIdx := indexOf(header, "Location")
	if locIdx < 0 {
		return fmt.Errorf("unrecognized schema: no Location column")
	}
	timeIdx, priceIdx, err := resolveSchema(header)
	if err != nil {
		return err
	}

	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if locIdx >= len(row) || timeIdx >= len(row) || priceIdx >= len(row) {
			continue
		}
		if row[locIdx] != l.node {
			continue
		}
		ts, err := parsePriceTime(row[timeIdx])
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[priceIdx]), 64)
		if err != nil {
			continue
		}
		hour := ts.Truncate(time.Hour)
		sums[hour] += price
		counts[hour]++
	}
	return nil
}

// resolveSchema picks the (timestamp, price) column pair for the file's
// header variant. Older dumps use Time_Central/SPP; newer ones use
// Interval Ending (or Time) with Settlement Point Price.
func resolveSchema(header []string) (timeIdx, priceIdx int, err error) {
	if i := indexOf(header, "Time_Central"); i >= 0 {
		if p := indexOf(header, "SPP"); p >= 0 {
			return i, p, nil
		}
	}
	timeIdx = indexOf(header, "Interval Ending")
	if timeIdx < 0 {
		timeIdx = indexOf(header, "Time")
	}
	priceIdx = indexOf(header, "Settlement Point Price")
	if timeIdx >= 0 && priceIdx >= 0 {
		return timeIdx, priceIdx, nil
	}
	return 0, 0, fmt.Errorf("unrecognized schema: columns %v", header)
}

// parsePriceTime parses a price timestamp. Offset-aware values are
// converted to UTC and the offset dropped, matching the naive
// timestamps of the fuel-mix side.
func parsePriceTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

func indexOf(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
