package get_operating_hours

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/providers"
)

const (
	msgInvalidProviderID = "Invalid provider ID"
	msgMissingUserID     = "Missing user ID"
	msgProviderNotFound  = "Provider not found"
	msgForbidden         = "Access denied"
)

type Handler struct {
	service ProviderService
	logger  Logger
}

func NewHandler(service ProviderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/operating-hours
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/operating-hours - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /providers/{id}/operating-hours - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetOperatingHours(r.Context(), providerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/operating-hours - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, providers.ErrAccessDenied):
			h.logger.Warn("GET /providers/{id}/operating-hours - Access denied: provider_id=%d, user_id=%d", providerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /providers/{id}/operating-hours - Failed to get operating hours: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/operating-hours - Retrieved: provider_id=%d, days=%d",
		providerID, len(result.OperatingHours))
	handlers.RespondJSON(w, http.StatusOK, result)
}
