package availability

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// RuleRepository источник правил доступности
type RuleRepository interface {
	FindActiveRules(ctx context.Context, providerID int64, weekday domain.Weekday) ([]*domain.AvailabilityRule, error)
}

// ParticipantsReader источник занятости слота
type ParticipantsReader interface {
	ActiveParticipants(ctx context.Context, key domain.SlotKey, excludeID *int64) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
