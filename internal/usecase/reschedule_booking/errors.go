package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrAccessDenied возвращается, когда переносит не владелец бронирования
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrCannotReschedule возвращается, когда бронирование нельзя перенести
	ErrCannotReschedule = errors.New("reschedule_booking: booking cannot be rescheduled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
