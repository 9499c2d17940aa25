package core

import (
	"strings"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "2 Jan 2006"
)

// ParseRideDate parses a stored ride date into a UTC calendar date.
//
// Plain ISO dates ("2025-01-05") and RFC 3339 timestamps are accepted. For a
// timestamp the calendar date as written is kept, so "2025-01-31T23:30:00-05:00"
// is January 31st regardless of the server's zone.
func ParseRideDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// DisplayDate renders a ride date the way lists show it ("5 Jan 2025").
// Unparseable dates render as the empty string.
func DisplayDate(s string) string {
	t, ok := ParseRideDate(s)
	if !ok {
		return ""
	}
	return t.Format(displayDateLayout)
}

// MonthLabel is the long month/year label used by month groups.
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// ShortMonthLabel is the compact label used by chart series ("Jan 25").
func ShortMonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
}
