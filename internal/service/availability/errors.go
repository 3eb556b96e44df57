package availability

import "errors"

var (
	// ErrInvalidRequest возвращается при некорректных входных данных проверки
	ErrInvalidRequest = errors.New("availability.service: invalid request")

	// ErrRulesLookup возвращается, когда не удалось прочитать правила доступности
	ErrRulesLookup = errors.New("availability.service: failed to load availability rules")

	// ErrCapacityLookup возвращается, когда не удалось посчитать занятость слота
	ErrCapacityLookup = errors.New("availability.service: failed to read slot occupancy")

	// ErrNotAvailable оборачивается в RejectionError
	ErrNotAvailable = errors.New("availability.service: slot not available")
)

// RejectionError отказ резолвера, переданный наверх как ошибка.
// Reason передается клиенту дословно.
type RejectionError struct {
	Kind   RejectionKind
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func (e *RejectionError) Unwrap() error {
	return ErrNotAvailable
}
