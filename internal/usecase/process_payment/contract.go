package process_payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/gateways"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Booking, error)
	SettlePayment(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, at time.Time) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	HasOpen(ctx context.Context, bookingID int64) (bool, error)
	Create(ctx context.Context, p *domain.BookingPayment) (*domain.BookingPayment, error)
	UpdateResult(ctx context.Context, p *domain.BookingPayment) error
}

// GatewayRegistry шлюзы по способу оплаты
type GatewayRegistry interface {
	Gateway(method domain.PaymentMethod) (gateways.Gateway, bool)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик платежей
type Metrics interface {
	IncPayment(method, status string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
