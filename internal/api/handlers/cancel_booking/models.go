package cancel_booking

import (
	"time"

	"github.com/google/uuid"

	cancelBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model, тело необязательно
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID        uuid.UUID `json:"bookingId"`
	Status           string    `json:"status"`
	CancellationType string    `json:"cancellationType"`
	RefundAmount     string    `json:"refundAmount"`
	RefundPercentage int       `json:"refundPercentage"`
	RefundStatus     string    `json:"refundStatus"`
	CancelledAt      string    `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(publicID uuid.UUID, userID int64) *cancelBooking.Request {
	reason := ""
	if r.Reason != nil {
		reason = *r.Reason
	}

	return &cancelBooking.Request{
		PublicID: publicID,
		UserID:   userID,
		Reason:   reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:        resp.PublicID,
		Status:           resp.Status,
		CancellationType: resp.CancellationType,
		RefundAmount:     resp.RefundAmount.StringFixed(2),
		RefundPercentage: resp.RefundPercentage,
		RefundStatus:     resp.RefundStatus,
		CancelledAt:      resp.CancelledAt.Format(time.RFC3339),
	}
}
