// Package hourly resamples pivoted interval tables to one row per hour
// and derives the Load, Emissions and Price columns of the analytic
// table.
package hourly

import (
	"fmt"
	"sort"
	"time"

	"gridhistory/internal/reshape"
)

// Mode selects the per-hour aggregation of sub-hourly readings. The two
// historical source variants disagree: Sum treats each interval value as
// MWh delivered in that interval, so the hourly sum is MWh; Mean treats
// values as instantaneous MW, so the hourly mean is average MW. The
// choice moves Load by roughly the interval count per hour and is always
// an explicit parameter.
type Mode string

const (
	Sum  Mode = "sum"
	Mean Mode = "mean"
)

// ParseMode validates a configured aggregation mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Sum, Mean:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown aggregation mode %q", s)
}

// Row is one hour of the analytic table.
type Row struct {
	Hour            time.Time
	Fuel            map[string]float64
	Load            float64
	Emissions       float64
	EmissionsByFuel map[string]float64
	Price           float64
}

// Table is the hourly analytic table. Rows are strictly increasing in
// Hour with no duplicates. EmissionCols lists the fuels that received an
// Emissions_<fuel> column, in factor-resolution order.
type Table struct {
	Fuels        []string
	EmissionCols []string
	Rows         []Row
}

// Aggregate concatenates the per-sheet pivoted tables, sorts by
// timestamp and resamples into one-hour buckets using mode. Fuels absent
// from a bucket aggregate to zero.
func Aggregate(tables []reshape.Table, mode Mode) Table {
	fuelSet := make(map[string]bool)
	type bucket struct {
		sum   map[string]float64
		count map[string]int
	}
	buckets := make(map[time.Time]*bucket)

	for _, t := range tables {
		for _, fuel := range t.Fuels {
			fuelSet[fuel] = true
		}
		for _, row := range t.Rows {
			hour := row.Timestamp.Truncate(time.Hour)
			b, ok := buckets[hour]
			if !ok {
				b = &bucket{sum: make(map[string]float64), count: make(map[string]int)}
				buckets[hour] = b
			}
			for fuel, mw := range row.Values {
				b.sum[fuel] += mw
				b.count[fuel]++
			}
		}
	}

	out := Table{Fuels: make([]string, 0, len(fuelSet))}
	for fuel := range fuelSet {
		out.Fuels = append(out.Fuels, fuel)
	}
	sort.Strings(out.Fuels)

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	for _, hour := range hours {
		b := buckets[hour]
		row := Row{Hour: hour, Fuel: make(map[string]float64, len(out.Fuels))}
		for _, fuel := range out.Fuels {
			value := b.sum[fuel]
			if mode == Mean {
				if n := b.count[fuel]; n > 0 {
					value /= float64(n)
				}
			}
			row.Fuel[fuel] = value
			row.Load += value
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
