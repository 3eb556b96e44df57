package models

import (
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// UpdateOperatingHoursRequest замена недельного расписания провайдера.
// День без записи считается выходным.
type UpdateOperatingHoursRequest struct {
	UserID         int64                 `json:"-"`
	ProviderID     int64                 `json:"-"`
	OperatingHours domain.OperatingHours `json:"operatingHours"`
}

// OperatingHoursResponse часы работы провайдера
type OperatingHoursResponse struct {
	ProviderID            int64                 `json:"providerId"`
	BusinessName          string                `json:"businessName"`
	AcceptsOnlineBookings bool                  `json:"acceptsOnlineBookings"`
	OperatingHours        domain.OperatingHours `json:"operatingHours"`
}

// FromDomainProvider конвертирует domain модель в DTO
func FromDomainProvider(p *domain.Provider) *OperatingHoursResponse {
	hours := p.OperatingHours
	if hours == nil {
		hours = domain.OperatingHours{}
	}
	return &OperatingHoursResponse{
		ProviderID:            p.ID,
		BusinessName:          p.BusinessName,
		AcceptsOnlineBookings: p.AcceptsOnlineBookings,
		OperatingHours:        hours,
	}
}
