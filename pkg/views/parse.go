package views

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted by ParseTime, tried in order. Layouts without a zone use the location
// of the reference time.
var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime reads a user-supplied time relative to now. It accepts RFC 3339, the layouts
// above, a clock time ("15:04", today), "+90m" style offsets, "today" and "tomorrow".
func ParseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return time.Time{}, fmt.Errorf("empty time")
	case "now":
		return now, nil
	case "today":
		return StartOfDay(now), nil
	case "tomorrow":
		return StartOfDay(now).AddDate(0, 0, 1), nil
	}

	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q: %w", s, err)
		}
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if clock, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ParseMonth reads "2006-01" into the first day of that month in now's location.
// The empty string is the month of now.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return t, nil
}
