package check_availability

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Request модель запроса проверки слота
type Request struct {
	ProviderID   int64
	ServiceID    int64
	Date         time.Time
	Time         types.TimeString
	Participants int
}

// Response вердикт: Message - причина отказа или "Available"
type Response struct {
	Available      bool
	Message        string
	RemainingSpots int
}
