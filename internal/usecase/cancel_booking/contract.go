package cancel_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, cancelledBy *int64, reason string, at time.Time) error
}

// ProviderRepository интерфейс репозитория провайдеров и услуг
type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error)
}

// CancellationRepository интерфейс репозитория отмен
type CancellationRepository interface {
	Create(ctx context.Context, c *domain.BookingCancellation) (*domain.BookingCancellation, error)
}

// ReminderScheduler планировщик напоминаний
type ReminderScheduler interface {
	CancelPending(ctx context.Context, bookingID int64) error
	ScheduleCancellation(ctx context.Context, b *domain.Booking, d notifications.Details, now time.Time) ([]*domain.BookingReminder, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик отмен
type Metrics interface {
	IncCancellation(cancellationType string, refundPercentage int)
	IncBooking(operation, outcome string)
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
