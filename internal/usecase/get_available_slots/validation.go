package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// validateRequest валидирует входные данные и нормализует диапазон
func validateRequest(req *Request, maxRangeDays int) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.From.IsZero() {
		return fmt.Errorf("%w: from date is required", ErrInvalidInput)
	}

	if req.To.IsZero() {
		req.To = req.From
	}

	if domain.IsBeforeDay(req.To, req.From) {
		return fmt.Errorf("%w: to date is before from date", ErrInvalidRange)
	}

	if days := len(domain.DaysBetween(req.From, req.To)); days > maxRangeDays {
		return fmt.Errorf("%w: range of %d days exceeds %d", ErrInvalidRange, days, maxRangeDays)
	}

	return nil
}
