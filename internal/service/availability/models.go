package availability

import (
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// RejectionKind машиночитаемая причина отказа (для метрик и тестов)
type RejectionKind string

const (
	KindNone          RejectionKind = ""
	KindPastDate      RejectionKind = "past_date"
	KindPastTime      RejectionKind = "past_time"
	KindClosedDay     RejectionKind = "closed_day"
	KindOutsideHours  RejectionKind = "outside_hours"
	KindNoRule        RejectionKind = "no_rule"
	KindCapacity      RejectionKind = "capacity"
	KindMinimumNotice RejectionKind = "minimum_notice"
)

// Тексты причин отдаются клиенту без изменений
const (
	ReasonAvailable        = "Available"
	ReasonPastDate         = "Cannot book appointments in the past"
	ReasonPastTime         = "Cannot book appointments for past times today"
	ReasonClosedDay        = "Provider is not available on this day"
	ReasonOutsideHoursFmt  = "Provider is not available at this time. Operating hours: %s - %s"
	ReasonNoRule           = "No availability found for this time slot"
	ReasonCapacityFmt      = "Not enough spots available. Only %d spots remaining"
	ReasonMinimumNoticeFmt = "Minimum %d hours advance notice required"
)

// Request запрос проверки доступности слота
type Request struct {
	Provider     *domain.Provider
	Service      *domain.Service
	Date         time.Time
	Time         types.TimeString
	Participants int

	// ExcludeBookingID не учитывается в занятости (перенос собственного бронирования)
	ExcludeBookingID *int64
}

// Result вердикт резолвера
type Result struct {
	Available bool
	Reason    string
	Kind      RejectionKind

	// Заполняются, когда найдено правило
	Rule     *domain.AvailabilityRule
	Capacity int
	Occupied int
}

// RemainingSpots свободные места в слоте (не меньше нуля)
func (r Result) RemainingSpots() int {
	if r.Capacity-r.Occupied < 0 {
		return 0
	}
	return r.Capacity - r.Occupied
}

// Err возвращает RejectionError для недоступного слота, иначе nil
func (r Result) Err() error {
	if r.Available {
		return nil
	}
	return &RejectionError{Kind: r.Kind, Reason: r.Reason}
}

func reject(kind RejectionKind, reason string) Result {
	return Result{Available: false, Kind: kind, Reason: reason}
}
