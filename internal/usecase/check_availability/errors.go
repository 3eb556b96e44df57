package check_availability

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("check_availability: provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена у провайдера
	ErrServiceNotFound = errors.New("check_availability: service not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_availability: internal error")
)
