package reschedule_booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	rescheduleBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid new date")
	errInvalidTime = errors.New("invalid new time")
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewDate string  `json:"newDate"` // "2025-06-10"
	NewTime string  `json:"newTime"` // "11:00"
	Reason  *string `json:"reason,omitempty"`
}

// RescheduleBookingResponse новое бронирование
type RescheduleBookingResponse struct {
	BookingID         uuid.UUID `json:"bookingId"`
	OriginalBookingID uuid.UUID `json:"originalBookingId"`
	ConfirmationToken uuid.UUID `json:"confirmationToken"`
	BookingDate       string    `json:"bookingDate"`
	BookingTime       string    `json:"bookingTime"`
	Participants      int       `json:"participants"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"paymentStatus"`
	TotalAmount       string    `json:"totalAmount"`
	Currency          string    `json:"currency"`
	RescheduleCount   int       `json:"rescheduleCount"`
	CreatedAt         string    `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(publicID uuid.UUID, userID int64) (*rescheduleBooking.Request, error) {
	newDate, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, errInvalidDate
	}

	newTime, err := types.NewTimeStringFromString(r.NewTime)
	if err != nil {
		return nil, errInvalidTime
	}

	reason := ""
	if r.Reason != nil {
		reason = *r.Reason
	}

	return &rescheduleBooking.Request{
		PublicID: publicID,
		UserID:   userID,
		NewDate:  newDate,
		NewTime:  newTime,
		Reason:   reason,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		BookingID:         resp.PublicID,
		OriginalBookingID: resp.OriginalPublicID,
		ConfirmationToken: resp.ConfirmationToken,
		BookingDate:       resp.BookingDate.Format(domain.DateFormat),
		BookingTime:       resp.BookingTime.String(),
		Participants:      resp.Participants,
		Status:            resp.Status,
		PaymentStatus:     resp.PaymentStatus,
		TotalAmount:       resp.TotalAmount.StringFixed(2),
		Currency:          resp.Currency,
		RescheduleCount:   resp.RescheduleCount,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
	}
}
