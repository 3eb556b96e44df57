package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
)

// ProviderRepository интерфейс репозитория провайдеров и услуг
type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error)
}

// AvailabilityChecker проверка доступности слота
type AvailabilityChecker interface {
	Check(ctx context.Context, req availability.Request, now time.Time) (availability.Result, error)
}

// Metrics счетчик отказов
type Metrics interface {
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
