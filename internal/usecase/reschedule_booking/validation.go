package reschedule_booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PublicID == uuid.Nil {
		return fmt.Errorf("%w: booking id is required", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: new date is required", ErrInvalidInput)
	}

	if err := req.NewTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid new time: %v", ErrInvalidInput, err)
	}

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}
