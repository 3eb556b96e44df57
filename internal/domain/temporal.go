package domain

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// DateOnly truncates t to midnight in t's location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDate reinterprets the calendar day of date in loc.
// Dates read from a DATE column arrive as UTC midnight and must keep their day.
func CalendarDate(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Combine builds the instant of a booking: calendar date + time of day in loc
func Combine(date time.Time, at types.TimeString, loc *time.Location) (time.Time, error) {
	if err := at.Validate(); err != nil {
		return time.Time{}, err
	}
	minutes := at.Minutes()
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc), nil
}

// IsSameDay compares calendar days ignoring locations
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsBeforeDay reports whether the calendar day of a precedes the one of b
func IsBeforeDay(a, b time.Time) bool {
	return CalendarDate(a, time.UTC).Before(CalendarDate(b, time.UTC))
}

// DaysBetween lists calendar days from..to inclusive
func DaysBetween(from, to time.Time) []time.Time {
	start := CalendarDate(from, from.Location())
	end := CalendarDate(to, from.Location())

	days := make([]time.Time, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
