package cancellation

import "errors"

var (
	// ErrCancellationNotFound возвращается, когда у бронирования нет записи об отмене
	ErrCancellationNotFound = errors.New("cancellation.repository: cancellation not found")

	// ErrUnknownRefundStatus возвращается до обращения к базе, если статус возврата вне допустимого набора
	ErrUnknownRefundStatus = errors.New("cancellation.repository: unknown refund status")

	ErrBuildQuery = errors.New("cancellation.repository: failed to build query")
	ErrExecQuery  = errors.New("cancellation.repository: failed to execute query")
	ErrScanRow    = errors.New("cancellation.repository: failed to scan row")
)
