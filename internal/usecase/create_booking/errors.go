package create_booking

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("create_booking: provider not found")

	// ErrProviderNotBookable возвращается, когда провайдер не принимает онлайн-бронирования
	ErrProviderNotBookable = errors.New("create_booking: provider does not accept online bookings")

	// ErrServiceNotFound возвращается, когда услуга не найдена у провайдера
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceNotBookable возвращается, когда услуга неактивна или закрыта для бронирования
	ErrServiceNotBookable = errors.New("create_booking: service is not bookable")

	// ErrTooManyParticipants возвращается, когда участников больше, чем допускает услуга
	ErrTooManyParticipants = errors.New("create_booking: too many participants")

	// ErrContactRequired возвращается, когда контактные данные не удалось заполнить
	ErrContactRequired = errors.New("create_booking: customer contact is required")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
