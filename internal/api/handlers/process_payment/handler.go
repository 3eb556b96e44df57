package process_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	processPayment "github.com/m04kA/SMC-WellnessBooking/internal/usecase/process_payment"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

const (
	msgInvalidBookingID   = "Invalid booking ID"
	msgInvalidRequestBody = "Invalid request body"
	msgMissingUserID      = "Missing user ID"
	msgNotFound           = "Booking not found"
	msgForbidden          = "Access denied"
	msgAlreadyPaid        = "This booking has already been paid"
	msgCannotPay          = "This booking cannot be paid"
	msgPaymentInProgress  = "A payment for this booking is already in progress"
	msgInvalidMethod      = "Invalid payment method"
	msgPaymentFailed      = "Payment failed"
)

type Handler struct {
	useCase ProcessPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ProcessPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	publicID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/payment - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := PaymentRequest{}
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /bookings/{id}/payment - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	useCaseReq, err := req.ToUseCaseRequest(publicID, userID)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment - Invalid payment method: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMethod)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, processPayment.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/payment - Booking not found: booking_id=%s", publicID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, processPayment.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/payment - Access denied: booking_id=%s, user_id=%d", publicID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, processPayment.ErrAlreadyPaid):
			h.logger.Warn("POST /bookings/{id}/payment - Already paid: booking_id=%s", publicID)
			handlers.RespondBadRequest(w, msgAlreadyPaid)

		case errors.Is(err, processPayment.ErrPaymentInProgress):
			h.logger.Warn("POST /bookings/{id}/payment - Payment in progress: booking_id=%s", publicID)
			handlers.RespondConflict(w, msgPaymentInProgress)

		case errors.Is(err, processPayment.ErrCannotPay):
			h.logger.Warn("POST /bookings/{id}/payment - Cannot pay: booking_id=%s", publicID)
			handlers.RespondBadRequest(w, msgCannotPay)

		case errors.Is(err, processPayment.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/payment - Invalid input: booking_id=%s, error=%v", publicID, err)
			handlers.RespondBadRequest(w, msgInvalidMethod)

		default:
			h.logger.Error("POST /bookings/{id}/payment - Failed to process payment: booking_id=%s, error=%v",
				publicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Отказ шлюза записан в платеж, клиенту отдается причина
	if !result.Success {
		reason := ptr.Deref(result.FailedReason, msgPaymentFailed)
		h.logger.Warn("POST /bookings/{id}/payment - Payment failed: booking_id=%s, payment_id=%d, reason=%s",
			publicID, result.PaymentID, reason)
		handlers.RespondBadRequest(w, reason)
		return
	}

	h.logger.Info("POST /bookings/{id}/payment - Payment processed: booking_id=%s, payment_id=%d, status=%s",
		publicID, result.PaymentID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
