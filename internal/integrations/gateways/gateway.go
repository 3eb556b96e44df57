package gateways

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// Result итог обращения к шлюзу.
// Status: completed (деньги получены) или pending (оплата на месте).
type Result struct {
	Status        domain.PaymentState
	TransactionID *string
	Response      map[string]interface{}
}

// Gateway проводит платеж одного способа оплаты
type Gateway interface {
	Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*Result, error)
}

// Clock источник времени для идентификаторов транзакций
type Clock func() time.Time

// Registry шлюзы по способу оплаты
type Registry struct {
	gateways map[domain.PaymentMethod]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[domain.PaymentMethod]Gateway)}
}

// Register добавляет шлюз, повторная регистрация заменяет предыдущий
func (r *Registry) Register(method domain.PaymentMethod, g Gateway) *Registry {
	r.gateways[method] = g
	return r
}

// Gateway возвращает шлюз способа оплаты
func (r *Registry) Gateway(method domain.PaymentMethod) (Gateway, bool) {
	g, ok := r.gateways[method]
	return g, ok
}

// SafeCharge вызывает шлюз и превращает панику в ошибку
func SafeCharge(ctx context.Context, g Gateway, p *domain.BookingPayment, data map[string]interface{}) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrGatewayPanic, rec)
		}
	}()
	return g.Charge(ctx, p, data)
}
