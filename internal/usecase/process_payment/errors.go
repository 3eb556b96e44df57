package process_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("process_payment: booking not found")

	// ErrAccessDenied возвращается, когда платит не владелец бронирования
	ErrAccessDenied = errors.New("process_payment: access denied")

	// ErrAlreadyPaid возвращается при повторной оплате
	ErrAlreadyPaid = errors.New("process_payment: booking already paid")

	// ErrPaymentInProgress возвращается, пока у бронирования есть незавершенная или успешная попытка оплаты
	ErrPaymentInProgress = errors.New("process_payment: payment already in progress")

	// ErrCannotPay возвращается для бронирований в терминальном статусе
	ErrCannotPay = errors.New("process_payment: booking cannot be paid")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("process_payment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("process_payment: internal error")
)
