package create_booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID       int64
	ProviderID   int64
	ServiceID    int64
	Date         time.Time        // Дата бронирования (без времени)
	Time         types.TimeString // Время начала, "HH:MM"
	Participants int

	// Пустые поля заполняются из профиля UserService
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	SpecialRequests *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                int64
	PublicID          uuid.UUID
	ConfirmationToken uuid.UUID
	UserID            int64
	ProviderID        int64
	ServiceID         int64
	BookingDate       time.Time
	BookingTime       types.TimeString
	DurationMinutes   int
	Participants      int
	Status            string
	PaymentStatus     string

	ServicePrice decimal.Decimal
	TotalAmount  decimal.Decimal
	Currency     string

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	SpecialRequests *string

	// Запланированные напоминания
	Reminders int

	CreatedAt time.Time
	UpdatedAt time.Time
}
