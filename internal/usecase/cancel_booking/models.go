package cancel_booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultReason причина, если пользователь ее не указал
const DefaultReason = "Customer cancellation"

// Request модель запроса на отмену
type Request struct {
	PublicID uuid.UUID
	UserID   int64  // Кто отменяет
	Reason   string // Необязательная причина
}

// Response результат отмены с рассчитанным возвратом
type Response struct {
	PublicID         uuid.UUID
	Status           string
	CancellationType string
	RefundAmount     decimal.Decimal
	RefundPercentage int
	RefundStatus     string
	CancelledAt      time.Time
}
