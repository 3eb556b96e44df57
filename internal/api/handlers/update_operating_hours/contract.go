package update_operating_hours

import (
	"context"

	"github.com/m04kA/SMC-WellnessBooking/internal/service/providers/models"
)

type ProviderService interface {
	UpdateOperatingHours(ctx context.Context, req *models.UpdateOperatingHoursRequest) (*models.OperatingHoursResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
