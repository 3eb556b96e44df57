package notifications

import "errors"

var (
	// ErrSchedule возвращается, когда не удалось сохранить напоминания
	ErrSchedule = errors.New("notifications.service: failed to schedule reminders")

	// ErrCancelPending возвращается, когда не удалось отменить pending напоминания
	ErrCancelPending = errors.New("notifications.service: failed to cancel pending reminders")
)
