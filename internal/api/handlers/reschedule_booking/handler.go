package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	rescheduleBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID   = "Invalid booking ID"
	msgInvalidRequestBody = "Invalid request body"
	msgInvalidDate        = "Invalid new date, expected YYYY-MM-DD"
	msgInvalidTime        = "Invalid new time, expected HH:MM"
	msgMissingUserID      = "Missing user ID"
	msgNotFound           = "Booking not found"
	msgForbidden          = "Access denied"
	msgCannotReschedule   = "This booking cannot be rescheduled"
	msgInvalidInput       = "Invalid reschedule data"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	publicID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(publicID, userID)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var rejection *availability.RejectionError
		if errors.As(err, &rejection) {
			h.logger.Info("POST /bookings/{id}/reschedule - New slot rejected: booking_id=%s, kind=%s", publicID, rejection.Kind)
			handlers.RespondBadRequest(w, rejection.Reason)
			return
		}

		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reschedule - Booking not found: booking_id=%s", publicID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reschedule - Access denied: booking_id=%s, user_id=%d", publicID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			h.logger.Warn("POST /bookings/{id}/reschedule - Cannot reschedule: booking_id=%s", publicID)
			handlers.RespondBadRequest(w, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reschedule - Invalid input: booking_id=%s, error=%v", publicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed to reschedule booking: booking_id=%s, error=%v",
				publicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking rescheduled: booking_id=%s -> %s, user_id=%d",
		publicID, result.PublicID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
