package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProviderID int64
	ServiceID  int64
	From       time.Time // Первая дата диапазона
	To         time.Time // Последняя дата диапазона (включительно), пустая = From
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ProviderID int64
	ServiceID  int64
	From       time.Time
	To         time.Time
	Slots      []domain.AvailableSlot // По дате, затем по времени
}
