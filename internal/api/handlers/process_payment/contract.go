package process_payment

import (
	"context"

	processPayment "github.com/m04kA/SMC-WellnessBooking/internal/usecase/process_payment"
)

type ProcessPaymentUseCase interface {
	Execute(ctx context.Context, req *processPayment.Request) (*processPayment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
