package booking

import (
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
