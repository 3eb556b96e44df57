package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of week numbered from Monday (0) to Sunday (6)
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid reports whether w is in [Monday, Sunday]
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// ParseWeekday accepts lowercase English day names ("monday")
func ParseWeekday(name string) (Weekday, error) {
	for i, n := range weekdayNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}

// WeekdayOf returns the Monday-based weekday of a calendar date
func WeekdayOf(date time.Time) Weekday {
	return Weekday((int(date.Weekday()) + 6) % 7)
}
