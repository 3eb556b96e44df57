package reminders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// ReminderRepository интерфейс репозитория напоминаний
type ReminderRepository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.BookingReminder, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// Notifier доставляет напоминание получателю
type Notifier interface {
	Send(ctx context.Context, reminder *domain.BookingReminder) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик обработанных напоминаний
type Metrics interface {
	IncReminder(status string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
