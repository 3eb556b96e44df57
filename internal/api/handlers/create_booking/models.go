package create_booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid booking date")
	errInvalidTime = errors.New("invalid booking time")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID      int64   `json:"providerId"`
	ServiceID       int64   `json:"serviceId"`
	BookingDate     string  `json:"bookingDate"` // "2025-06-09"
	BookingTime     string  `json:"bookingTime"` // "10:00"
	Participants    *int    `json:"participants,omitempty"`
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerEmail   string  `json:"customerEmail"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID         uuid.UUID `json:"bookingId"`
	ConfirmationToken uuid.UUID `json:"confirmationToken"`
	UserID            int64     `json:"userId"`
	ProviderID        int64     `json:"providerId"`
	ServiceID         int64     `json:"serviceId"`
	BookingDate       string    `json:"bookingDate"`
	BookingTime       string    `json:"bookingTime"`
	DurationMinutes   int       `json:"durationMinutes"`
	Participants      int       `json:"participants"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"paymentStatus"`
	ServicePrice      string    `json:"servicePrice"`
	TotalAmount       string    `json:"totalAmount"`
	Currency          string    `json:"currency"`
	CustomerName      string    `json:"customerName"`
	CustomerPhone     string    `json:"customerPhone,omitempty"`
	CustomerEmail     string    `json:"customerEmail,omitempty"`
	SpecialRequests   *string   `json:"specialRequests,omitempty"`
	RemindersPlanned  int       `json:"remindersPlanned"`
	CreatedAt         string    `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Участников по умолчанию один.
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, errInvalidDate
	}

	bookingTime, err := types.NewTimeStringFromString(r.BookingTime)
	if err != nil {
		return nil, errInvalidTime
	}

	participants := domain.MinParticipants
	if r.Participants != nil {
		participants = *r.Participants
	}

	return &createBooking.Request{
		UserID:          userID,
		ProviderID:      r.ProviderID,
		ServiceID:       r.ServiceID,
		Date:            bookingDate,
		Time:            bookingTime,
		Participants:    participants,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:         resp.PublicID,
		ConfirmationToken: resp.ConfirmationToken,
		UserID:            resp.UserID,
		ProviderID:        resp.ProviderID,
		ServiceID:         resp.ServiceID,
		BookingDate:       resp.BookingDate.Format(domain.DateFormat),
		BookingTime:       resp.BookingTime.String(),
		DurationMinutes:   resp.DurationMinutes,
		Participants:      resp.Participants,
		Status:            resp.Status,
		PaymentStatus:     resp.PaymentStatus,
		ServicePrice:      resp.ServicePrice.StringFixed(2),
		TotalAmount:       resp.TotalAmount.StringFixed(2),
		Currency:          resp.Currency,
		CustomerName:      resp.CustomerName,
		CustomerPhone:     resp.CustomerPhone,
		CustomerEmail:     resp.CustomerEmail,
		SpecialRequests:   resp.SpecialRequests,
		RemindersPlanned:  resp.Reminders,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
	}
}
