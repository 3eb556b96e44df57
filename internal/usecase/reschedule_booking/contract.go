package reschedule_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	MarkRescheduled(ctx context.Context, id int64) error
}

// ProviderRepository интерфейс репозитория провайдеров и услуг
type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error)
}

// AvailabilityChecker проверка доступности слота
type AvailabilityChecker interface {
	Check(ctx context.Context, req availability.Request, now time.Time) (availability.Result, error)
}

// ReminderScheduler планировщик напоминаний
type ReminderScheduler interface {
	CancelPending(ctx context.Context, bookingID int64) error
	ScheduleReschedule(ctx context.Context, b *domain.Booking, d notifications.Details, reason string, now time.Time) ([]*domain.BookingReminder, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics доменные счетчики
type Metrics interface {
	IncBooking(operation, outcome string)
	IncRejection(kind string)
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
