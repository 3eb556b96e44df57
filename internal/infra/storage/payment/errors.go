package payment

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = errors.New("payment.repository: payment not found")

	// ErrOpenPaymentExists возвращается, когда у бронирования уже есть попытка в processing или completed
	ErrOpenPaymentExists = errors.New("payment.repository: booking already has an open payment")

	ErrBuildQuery = errors.New("payment.repository: failed to build query")
	ErrExecQuery  = errors.New("payment.repository: failed to execute query")
	ErrScanRow    = errors.New("payment.repository: failed to scan row")
)
