package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
)

// ProviderRepository интерфейс репозитория провайдеров и услуг
type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error)
	IncrementTotalBookings(ctx context.Context, providerID int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// AvailabilityChecker проверка доступности слота
type AvailabilityChecker interface {
	Check(ctx context.Context, req availability.Request, now time.Time) (availability.Result, error)
}

// ReminderScheduler планировщик напоминаний
type ReminderScheduler interface {
	ScheduleBooking(ctx context.Context, b *domain.Booking, d notifications.Details, now time.Time) ([]*domain.BookingReminder, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetProfileWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.Profile, error)
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
