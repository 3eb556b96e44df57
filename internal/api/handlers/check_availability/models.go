package check_availability

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	checkAvailability "github.com/m04kA/SMC-WellnessBooking/internal/usecase/check_availability"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Available      bool   `json:"available"`
	Message        string `json:"message"`
	RemainingSpots int    `json:"remainingSpots"`
}

// ToUseCaseRequest создает запрос use case из query параметров.
// participants необязателен, по умолчанию 1.
func ToUseCaseRequest(query url.Values) (*checkAvailability.Request, error) {
	providerID, err := strconv.ParseInt(query.Get("provider_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("provider_id: %w", err)
	}

	serviceID, err := strconv.ParseInt(query.Get("service_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("service_id: %w", err)
	}

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	startTime, err := types.NewTimeStringFromString(query.Get("time"))
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	participants := domain.MinParticipants
	if raw := query.Get("participants"); raw != "" {
		participants, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("participants: %w", err)
		}
	}

	return &checkAvailability.Request{
		ProviderID:   providerID,
		ServiceID:    serviceID,
		Date:         date,
		Time:         startTime,
		Participants: participants,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		Available:      resp.Available,
		Message:        resp.Message,
		RemainingSpots: resp.RemainingSpots,
	}
}
