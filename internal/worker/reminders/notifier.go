package reminders

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// LogNotifier пишет напоминание в лог вместо реальной отправки
type LogNotifier struct {
	logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, r *domain.BookingReminder) error {
	n.logger.Info("Notify: reminder id=%d booking=%d type=%s via %s: %s",
		r.ID, r.BookingID, r.Type, r.DeliveryMethod, r.Subject)
	return nil
}
