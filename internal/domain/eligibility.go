package domain

import "time"

// Policy holds the time-based rules for changing a booking.
// The checks are pure: the caller passes the current instant.
type Policy struct {
	Location         *time.Location
	CancelBuffer     time.Duration
	RescheduleBuffer time.Duration
	MaxReschedules   int
}

// DefaultPolicy returns the default rules in loc
func DefaultPolicy(loc *time.Location) Policy {
	return Policy{
		Location:         loc,
		CancelBuffer:     DefaultCancelBuffer,
		RescheduleBuffer: DefaultRescheduleBuffer,
		MaxReschedules:   DefaultMaxReschedules,
	}
}

// CanCancel is false for terminal bookings and for bookings that start
// within the cancel buffer.
func (p Policy) CanCancel(b Booking, now time.Time) bool {
	if b.Status.IsTerminal() {
		return false
	}
	startsAt, err := b.StartsAt(p.Location)
	if err != nil {
		return false
	}
	return startsAt.After(now.Add(p.CancelBuffer))
}

// CanReschedule is false for terminal bookings, bookings that used up
// their reschedules, and bookings that start within the reschedule buffer.
func (p Policy) CanReschedule(b Booking, now time.Time) bool {
	if b.Status.IsTerminal() {
		return false
	}
	if b.RescheduleCount >= p.MaxReschedules {
		return false
	}
	startsAt, err := b.StartsAt(p.Location)
	if err != nil {
		return false
	}
	return startsAt.After(now.Add(p.RescheduleBuffer))
}
