package reshape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadInterval reports a (date, interval-label) pair that does not
// combine into a timestamp. Records carrying it are dropped.
var ErrBadInterval = errors.New("unparseable date or interval label")

// dateLayouts are the date formats the spreadsheet cells surface.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"1/2/06 15:04",
	"01/02/2006 15:04:05",
}

// ParseInterval combines a date cell and an interval-label column header
// into a timestamp. A label containing "24:00" is the start of the next
// calendar day; a "(DST)" annotation on ambiguous fall-back days is
// stripped before parsing.
func ParseInterval(dateCell, label string) (time.Time, error) {
	day, err := parseDate(dateCell)
	if err != nil {
		return time.Time{}, err
	}

	label = strings.TrimSpace(strings.ReplaceAll(label, "(DST)", ""))
	if strings.Contains(label, "24:00") {
		return day.AddDate(0, 0, 1), nil
	}

	hour, minute, err := parseClock(label)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, ErrBadInterval
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrBadInterval, cell)
}

// parseClock accepts "H:MM", "HH:MM" and the same with a ":SS" part.
func parseClock(label string) (hour, minute int, err error) {
	parts := strings.Split(label, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("%w: label %q", ErrBadInterval, label)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: label %q", ErrBadInterval, label)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: label %q", ErrBadInterval, label)
	}
	return hour, minute, nil
}
