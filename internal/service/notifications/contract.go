package notifications

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// ReminderRepository хранилище напоминаний
type ReminderRepository interface {
	CreateBatch(ctx context.Context, reminders []*domain.BookingReminder) error
	CancelPending(ctx context.Context, bookingID int64) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
