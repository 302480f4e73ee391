// Package dates holds calendar-day helpers shared by the availability packages.
//
// All helpers work on whole days in the location carried by the time value.
// Intervals built from day-granular records start at StartOfDay and end at
// EndOfDay, so inclusive comparisons on instants match inclusive comparisons on
// calendar days.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the calendar day key format (YYYY-MM-DD).
const Layout = "2006-01-02"

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	Layout,
}

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayIn returns midnight in loc of the calendar day t was written for.
// The day is read in t's own location, so a date parsed as UTC midnight keeps
// its date in zones west of UTC.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// AddDays shifts t by n calendar days and truncates to the start of that day.
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// Key formats t as a YYYY-MM-DD day key.
func Key(t time.Time) string {
	return t.Format(Layout)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Before reports whether a's calendar day is strictly before b's.
func Before(a, b time.Time) bool {
	return DaysBetween(a, b) > 0
}

// After reports whether a's calendar day is strictly after b's.
func After(a, b time.Time) bool {
	return DaysBetween(a, b) < 0
}

// DaysBetween returns the number of calendar days from a to b.
// It is negative when b is before a. DST shifts do not affect the result.
func DaysBetween(a, b time.Time) int {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	ua := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	ub := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Span returns the inclusive number of days in [start, end].
func Span(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

// Each calls fn for every day in [start, end] until fn returns false.
func Each(start, end time.Time, fn func(day time.Time) bool) {
	last := StartOfDay(end)
	for d := StartOfDay(start); !d.After(last); d = d.AddDate(0, 0, 1) {
		if !fn(d) {
			return
		}
	}
}

// Range returns every day in [start, end]. It is empty when end is before start.
func Range(start, end time.Time) []time.Time {
	n := Span(start, end)
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	Each(start, end, func(d time.Time) bool {
		days = append(days, d)
		return true
	})
	return days
}

// Parse reads a date or timestamp string. Date-only and zone-less values are
// interpreted in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", s)
}

// MustParse is Parse for constants in tests and examples. It panics on error.
func MustParse(s string) time.Time {
	t, err := Parse(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
