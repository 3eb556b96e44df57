package providers

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("providers: provider not found")

	// ErrAccessDenied возвращается, когда пользователь не владелец провайдера
	ErrAccessDenied = errors.New("providers: access denied")

	// ErrInvalidInput возвращается при некорректных часах работы
	ErrInvalidInput = errors.New("providers: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("providers: internal error")
)
