package process_payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// validateRequest валидирует входные данные и возвращает способ оплаты
func validateRequest(req *Request) (domain.PaymentMethod, error) {
	if req.PublicID == uuid.Nil {
		return "", fmt.Errorf("%w: booking id is required", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return "", fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	raw := strings.TrimSpace(req.Method)
	if raw == "" {
		return DefaultMethod, nil
	}

	method, err := domain.ParsePaymentMethod(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return method, nil
}

// validatePayable проверяет, что бронирование можно оплатить
func validatePayable(b *domain.Booking, userID int64) error {
	if !b.IsOwnedBy(userID) {
		return ErrAccessDenied
	}
	if b.PaymentStatus == domain.PaymentStatusPaid {
		return ErrAlreadyPaid
	}
	if b.Status.IsTerminal() {
		return ErrCannotPay
	}
	return nil
}
