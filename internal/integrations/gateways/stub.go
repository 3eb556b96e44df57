package gateways

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

const transactionTimeFormat = "20060102150405"

// Stub имитирует мгновенную успешную оплату (PayHere, Frimi).
// Идентификатор транзакции: <prefix>_<YYYYMMDDHHMMSS>.
type Stub struct {
	name   string
	prefix string
	clock  Clock
}

func NewPayHere(clock Clock) *Stub {
	return &Stub{name: "payhere", prefix: "PH", clock: clock}
}

func NewFrimi(clock Clock) *Stub {
	return &Stub{name: "frimi", prefix: "FR", clock: clock}
}

func (s *Stub) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := s.prefix + "_" + s.clock().Format(transactionTimeFormat)
	return &Result{
		Status:        domain.PaymentStateCompleted,
		TransactionID: ptr.Ptr(id),
		Response: map[string]interface{}{
			"gateway":        s.name,
			"transaction_id": id,
			"simulated":      true,
		},
	}, nil
}

// Cash оплата на месте: платеж остается pending, бронирование подтверждается
type Cash struct{}

func NewCash() *Cash {
	return &Cash{}
}

func (Cash) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*Result, error) {
	return &Result{
		Status:   domain.PaymentStatePending,
		Response: map[string]interface{}{"gateway": "cash", "collect_at_venue": true},
	}, nil
}
