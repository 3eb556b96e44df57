package refund

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// Policy ступенчатая шкала возврата от времени до начала бронирования.
// Границы включительные: ровно FullRefundNotice дает полный возврат,
// ровно PartialRefundNotice дает частичный.
type Policy struct {
	FullRefundNotice    time.Duration
	PartialRefundNotice time.Duration
	PartialPercentage   int
}

// DefaultPolicy 100% за 24 часа и более, 50% от 2 до 24 часов, иначе 0%
func DefaultPolicy() Policy {
	return Policy{
		FullRefundNotice:    24 * time.Hour,
		PartialRefundNotice: 2 * time.Hour,
		PartialPercentage:   50,
	}
}

// Refund результат расчета
type Refund struct {
	Amount     decimal.Decimal
	Percentage int
	Status     domain.RefundStatus
}

// Percentage процент возврата при untilStart до начала
func (p Policy) Percentage(untilStart time.Duration) int {
	switch {
	case untilStart >= p.FullRefundNotice:
		return 100
	case untilStart >= p.PartialRefundNotice:
		return p.PartialPercentage
	default:
		return 0
	}
}

// Calculate возврат для суммы total при отмене в now бронирования, начинающегося в startsAt
func (p Policy) Calculate(total decimal.Decimal, startsAt, now time.Time) Refund {
	pct := p.Percentage(startsAt.Sub(now))
	amount := total.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)

	status := domain.RefundNone
	if amount.IsPositive() {
		status = domain.RefundPending
	}

	return Refund{Amount: amount, Percentage: pct, Status: status}
}
