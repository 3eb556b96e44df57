package provider

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("provider.repository: provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена у провайдера
	ErrServiceNotFound = errors.New("provider.repository: service not found")

	ErrBuildQuery = errors.New("provider.repository: failed to build query")
	ErrExecQuery  = errors.New("provider.repository: failed to execute query")
	ErrScanRow    = errors.New("provider.repository: failed to scan row")
)
