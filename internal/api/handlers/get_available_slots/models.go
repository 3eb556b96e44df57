package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-WellnessBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ProviderID int64           `json:"providerId"`
	ServiceID  int64           `json:"serviceId"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	AvailableSpots int    `json:"availableSpots"`
	TotalSpots     int    `json:"totalSpots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Date:           slot.Date.Format(domain.DateFormat),
			Time:           slot.StartTime.String(),
			AvailableSpots: slot.AvailableSpots,
			TotalSpots:     slot.TotalSpots,
		}
	}

	return &AvailableSlotsResponse{
		ProviderID: resp.ProviderID,
		ServiceID:  resp.ServiceID,
		From:       resp.From.Format(domain.DateFormat),
		To:         resp.To.Format(domain.DateFormat),
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров.
// Пустой to означает один день from.
func ToUseCaseRequest(providerID, serviceID int64, fromStr, toStr string) (*getAvailableSlots.Request, error) {
	from, err := time.Parse(domain.DateFormat, fromStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.Request{
		ProviderID: providerID,
		ServiceID:  serviceID,
		From:       from,
	}

	if toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			return nil, err
		}
		req.To = to
	}

	return req, nil
}
