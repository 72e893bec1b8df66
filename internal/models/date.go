package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire and in storage.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 calendar date ("2024-01-10").
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a calendar date as ISO-8601.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf returns the calendar date of t as seen in loc, normalised to UTC midnight
// so it compares directly with dates returned by ParseDate.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
