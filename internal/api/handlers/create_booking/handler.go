package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "Invalid request body"
	msgInvalidDate         = "Invalid booking date, expected YYYY-MM-DD"
	msgInvalidTime         = "Invalid booking time, expected HH:MM"
	msgMissingUserID       = "Missing user ID"
	msgInvalidInput        = "Invalid booking data"
	msgProviderNotFound    = "Provider not found"
	msgServiceNotFound     = "Service not found"
	msgProviderNotBookable = "Provider is not accepting online bookings"
	msgServiceNotBookable  = "Service is not available for booking"
	msgTooManyParticipants = "Too many participants for this service"
	msgContactRequired     = "Customer name and phone or email are required"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Отказ резолвера отдается клиенту дословно
		var rejection *availability.RejectionError
		if errors.As(err, &rejection) {
			h.logger.Info("POST /bookings - Slot rejected: user_id=%d, provider_id=%d, kind=%s",
				userID, req.ProviderID, rejection.Kind)
			handlers.RespondBadRequest(w, rejection.Reason)
			return
		}

		switch {
		case errors.Is(err, createBooking.ErrProviderNotFound):
			h.logger.Warn("POST /bookings - Provider not found: provider_id=%d", req.ProviderID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: provider_id=%d, service_id=%d", req.ProviderID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrProviderNotBookable):
			h.logger.Warn("POST /bookings - Provider not bookable: provider_id=%d", req.ProviderID)
			handlers.RespondBadRequest(w, msgProviderNotBookable)

		case errors.Is(err, createBooking.ErrServiceNotBookable):
			h.logger.Warn("POST /bookings - Service not bookable: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceNotBookable)

		case errors.Is(err, createBooking.ErrTooManyParticipants):
			h.logger.Warn("POST /bookings - Too many participants: service_id=%d, participants=%d",
				req.ServiceID, useCaseReq.Participants)
			handlers.RespondBadRequest(w, msgTooManyParticipants)

		case errors.Is(err, createBooking.ErrContactRequired):
			h.logger.Warn("POST /bookings - Contact required: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgContactRequired)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, provider_id=%d, error=%v",
				userID, req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%d, provider_id=%d",
		result.PublicID, userID, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
