package reminders

import "errors"

var (
	// ErrInvalidSchedule возвращается при некорректном cron выражении
	ErrInvalidSchedule = errors.New("reminders: invalid schedule")

	// ErrAlreadyStarted возвращается при повторном запуске
	ErrAlreadyStarted = errors.New("reminders: dispatcher already started")

	// ErrDispatch возвращается при ошибке чтения или обновления напоминаний
	ErrDispatch = errors.New("reminders: dispatch failed")
)
