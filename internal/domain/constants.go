package domain

import "time"

// Default booking policy values
const (
	DefaultCancelBuffer     = 2 * time.Hour
	DefaultRescheduleBuffer = 24 * time.Hour
	DefaultMaxReschedules   = 2
	DefaultSlotStepMinutes  = 30
	DefaultCurrency         = "LKR"
)

// Business validation constants
const (
	MinParticipants             = 1
	MaxSpecialRequestsLength    = 1000
	MaxCancellationReasonLength = 500
	MaxCustomerNameLength       = 200
	MaxCustomerPhoneLength      = 20
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy capacity
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses statuses a booking never leaves
var TerminalStatuses = []BookingStatus{
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
	StatusRescheduled,
}
