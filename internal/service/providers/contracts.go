package providers

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// ProviderRepository интерфейс репозитория провайдеров
type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	UpdateOperatingHours(ctx context.Context, providerID int64, hours domain.OperatingHours) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
