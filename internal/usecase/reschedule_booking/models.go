package reschedule_booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Request модель запроса на перенос
type Request struct {
	PublicID uuid.UUID
	UserID   int64
	NewDate  time.Time
	NewTime  types.TimeString
	Reason   string
}

// Response новое бронирование, созданное переносом
type Response struct {
	ID                int64
	PublicID          uuid.UUID
	OriginalPublicID  uuid.UUID
	BookingDate       time.Time
	BookingTime       types.TimeString
	Participants      int
	Status            string
	PaymentStatus     string
	TotalAmount       decimal.Decimal
	Currency          string
	RescheduleCount   int
	ConfirmationToken uuid.UUID
	CreatedAt         time.Time
}
