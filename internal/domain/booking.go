package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending     BookingStatus = "pending"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCancelled   BookingStatus = "cancelled"
	StatusCompleted   BookingStatus = "completed"
	StatusNoShow      BookingStatus = "no_show"
	StatusRescheduled BookingStatus = "rescheduled"
)

// ParseBookingStatus validates a status received from outside
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow, StatusRescheduled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBookingStatus, s)
	}
}

// IsActive returns true if the status occupies capacity
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true if the booking can no longer change
func (s BookingStatus) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment state stored on a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Booking represents a reservation of a service slot
type Booking struct {
	ID                int64
	PublicID          uuid.UUID
	ConfirmationToken uuid.UUID

	UserID          int64
	ProviderID      int64
	ServiceID       int64
	BookingDate     time.Time
	BookingTime     types.TimeString
	DurationMinutes int
	Participants    int

	Status        BookingStatus
	PaymentStatus PaymentStatus

	ServicePrice decimal.Decimal
	TotalAmount  decimal.Decimal
	Currency     string

	// Contact snapshot taken at booking time
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	SpecialRequests *string
	ProviderNotes   *string

	CancellationReason *string
	CancelledBy        *int64
	CancelledAt        *time.Time
	ConfirmedAt        *time.Time

	OriginalBookingID *int64
	RescheduleCount   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies capacity
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsOwnedBy returns true if userID made the booking
func (b *Booking) IsOwnedBy(userID int64) bool {
	return b.UserID == userID
}

// SlotKey returns the capacity bucket of the booking
func (b *Booking) SlotKey() SlotKey {
	return SlotKey{
		ProviderID: b.ProviderID,
		ServiceID:  b.ServiceID,
		Date:       b.BookingDate,
		Time:       b.BookingTime,
	}
}

// StartsAt returns the instant the booking begins in loc
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return Combine(b.BookingDate, b.BookingTime, loc)
}

// TotalAmountFor is price multiplied by participants
func TotalAmountFor(price decimal.Decimal, participants int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(participants)))
}

// UserBookingsFilter selects bookings of a customer
type UserBookingsFilter struct {
	UserID int64
	Status *BookingStatus
}

// ProviderBookingsFilter selects bookings of a provider
type ProviderBookingsFilter struct {
	ProviderID int64
	Date       *time.Time
	Status     *BookingStatus
}
