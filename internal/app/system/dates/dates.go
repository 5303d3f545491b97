// internal/app/system/dates/dates.go

// Package dates parses and normalizes the day-granularity dates used by
// project windows and task due dates.
package dates

import (
	"fmt"
	"time"
)

// Parse accepts "2006-01-02" or RFC 3339 and returns the UTC start of
// that day. Window checks are day-inclusive, so all stored project and
// due dates are normalized to midnight UTC.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return StartOfDay(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WithinWindow reports whether due falls inside [start, end] at day
// granularity, inclusive on both ends.
func WithinWindow(due, start, end time.Time) bool {
	d := StartOfDay(due)
	return !d.Before(StartOfDay(start)) && !d.After(StartOfDay(end))
}
