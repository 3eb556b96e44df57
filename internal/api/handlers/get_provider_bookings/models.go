package get_provider_bookings

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(providerID, userID int64, dateStr, statusStr string) (*models.GetProviderBookingsRequest, error) {
	req := &models.GetProviderBookingsRequest{
		UserID:     userID,
		ProviderID: providerID,
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, err
		}
		req.Date = &date
	}

	return req, nil
}
