package check_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-WellnessBooking/internal/usecase/check_availability"
)

const (
	msgInvalidParams    = "Invalid query parameters, expected provider_id, service_id, date (YYYY-MM-DD), time (HH:MM)"
	msgProviderNotFound = "Provider not found"
	msgServiceNotFound  = "Service not found"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability/check
// Query params: provider_id, service_id, date, time, participants (опционально)
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	useCaseReq, err := ToUseCaseRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /availability/check - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrProviderNotFound):
			h.logger.Warn("GET /availability/check - Provider not found: provider_id=%d", useCaseReq.ProviderID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, checkAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /availability/check - Service not found: provider_id=%d, service_id=%d",
				useCaseReq.ProviderID, useCaseReq.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability/check - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /availability/check - Failed to check availability: provider_id=%d, error=%v",
				useCaseReq.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability/check - provider_id=%d, date=%s, time=%s: available=%t",
		useCaseReq.ProviderID, r.URL.Query().Get("date"), useCaseReq.Time, result.Available)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
