package update_operating_hours

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/providers"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/providers/models"
)

const (
	msgInvalidProviderID   = "Invalid provider ID"
	msgInvalidRequestBody  = "Invalid request body"
	msgMissingUserID       = "Missing user ID"
	msgProviderNotFound    = "Provider not found"
	msgForbidden           = "Access denied"
	msgInvalidHours        = "Invalid operating hours: use lowercase day names and HH:MM times with open before close"
	msgMissingHoursSection = "operatingHours is required"
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

// Handle PUT /api/v1/providers/{providerId}/operating-hours
// Расписание заменяется целиком, день без записи считается выходным
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("PUT /providers/{id}/operating-hours - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /providers/{id}/operating-hours - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Часы валидируются еще при разборе JSON
	var req models.UpdateOperatingHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/operating-hours - Invalid request body: %v", err)
		if errors.Is(err, domain.ErrInvalidOperatingHours) {
			handlers.RespondBadRequest(w, msgInvalidHours)
		} else {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		}
		return
	}
	if req.OperatingHours == nil {
		h.logger.Warn("PUT /providers/{id}/operating-hours - Missing operatingHours")
		handlers.RespondBadRequest(w, msgMissingHoursSection)
		return
	}
	req.UserID = userID
	req.ProviderID = providerID

	result, err := h.service.UpdateOperatingHours(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, providers.ErrProviderNotFound):
			h.logger.Warn("PUT /providers/{id}/operating-hours - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, providers.ErrAccessDenied):
			h.logger.Warn("PUT /providers/{id}/operating-hours - Access denied: provider_id=%d, user_id=%d", providerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, providers.ErrInvalidInput):
			h.logger.Warn("PUT /providers/{id}/operating-hours - Invalid hours: %v", err)
			handlers.RespondBadRequest(w, msgInvalidHours)

		default:
			h.logger.Error("PUT /providers/{id}/operating-hours - Failed to update: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /providers/{id}/operating-hours - Updated: provider_id=%d, days=%d",
		providerID, len(result.OperatingHours))
	handlers.RespondJSON(w, http.StatusOK, result)
}
