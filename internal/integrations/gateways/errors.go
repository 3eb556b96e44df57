package gateways

import "errors"

var (
	// ErrDeclined возвращается, когда шлюз отклонил платеж
	ErrDeclined = errors.New("gateways: payment declined")

	// ErrNotCompleted возвращается, когда платеж не завершился синхронно
	ErrNotCompleted = errors.New("gateways: payment not completed")

	// ErrInvalidData возвращается при некорректных данных платежа
	ErrInvalidData = errors.New("gateways: invalid payment data")

	// ErrGatewayPanic возвращается, когда вызов шлюза завершился паникой
	ErrGatewayPanic = errors.New("gateways: gateway panicked")
)
