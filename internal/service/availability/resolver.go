package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

// Resolver решает, можно ли забронировать слот.
// Проверки идут в фиксированном порядке, первая неуспешная определяет причину отказа.
type Resolver struct {
	rules    RuleRepository
	ledger   *Ledger
	location *time.Location
	logger   Logger
}

// NewResolver location - часовой пояс, в котором заданы даты, время и часы работы
func NewResolver(rules RuleRepository, ledger *Ledger, location *time.Location, logger Logger) *Resolver {
	return &Resolver{
		rules:    rules,
		ledger:   ledger,
		location: location,
		logger:   logger,
	}
}

// Location часовой пояс резолвера
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Check проверяет слот на момент now. Отказ возвращается как Result, а не ошибка;
// ошибка означает только сбой чтения правил или занятости.
// Внутри транзакции чтение занятости блокирует строки слота.
func (r *Resolver) Check(ctx context.Context, req Request, now time.Time) (Result, error) {
	if req.Provider == nil || req.Service == nil {
		return Result{}, fmt.Errorf("%w: provider and service are required", ErrInvalidRequest)
	}
	if err := req.Time.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Participants < domain.MinParticipants {
		return Result{}, fmt.Errorf("%w: participants must be at least %d", ErrInvalidRequest, domain.MinParticipants)
	}

	now = now.In(r.location)
	date := domain.CalendarDate(req.Date, r.location)
	today := domain.DateOnly(now)

	// 1. Дата в прошлом
	if date.Before(today) {
		return reject(KindPastDate, ReasonPastDate), nil
	}

	// 2. Прошедшее время сегодня
	if date.Equal(today) && !req.Time.IsAfter(types.NewTimeString(now)) {
		return reject(KindPastTime, ReasonPastTime), nil
	}

	// 3. Часы работы провайдера
	weekday := domain.WeekdayOf(date)
	window, ok := req.Provider.OperatingHours.For(weekday)
	if !ok {
		return reject(KindClosedDay, ReasonClosedDay), nil
	}
	if !window.Contains(req.Time) {
		return reject(KindOutsideHours, fmt.Sprintf(ReasonOutsideHoursFmt, window.Open, window.Close)), nil
	}

	// 4. Правило доступности: сначала для услуги, затем общее
	rules, err := r.rules.FindActiveRules(ctx, req.Provider.ID, weekday)
	if err != nil {
		return Result{}, fmt.Errorf("%w: Check - provider=%d weekday=%s: %w", ErrRulesLookup, req.Provider.ID, weekday, err)
	}
	rule := SelectRule(rules, req.Service.ID, req.Time)
	if rule == nil {
		return reject(KindNoRule, ReasonNoRule), nil
	}

	// 5. Вместимость
	key := domain.SlotKey{
		ProviderID: req.Provider.ID,
		ServiceID:  req.Service.ID,
		Date:       date,
		Time:       req.Time,
	}
	occupied, err := r.ledger.Occupied(ctx, key, req.ExcludeBookingID)
	if err != nil {
		return Result{}, err
	}

	if occupied > rule.MaxBookings {
		r.logger.Warn("Check: slot is overbooked (provider=%d, service=%d, date=%s, time=%s, occupied=%d, max=%d)",
			key.ProviderID, key.ServiceID, date.Format(domain.DateFormat), req.Time, occupied, rule.MaxBookings)
	}

	result := Result{Rule: rule, Capacity: rule.MaxBookings, Occupied: occupied}
	if occupied+req.Participants > rule.MaxBookings {
		result.Kind = KindCapacity
		result.Reason = fmt.Sprintf(ReasonCapacityFmt, result.RemainingSpots())
		return result, nil
	}

	// 6. Минимальное время до начала
	startsAt, err := domain.Combine(date, req.Time, r.location)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if startsAt.Before(now.Add(req.Service.MinimumNotice())) {
		result.Kind = KindMinimumNotice
		result.Reason = fmt.Sprintf(ReasonMinimumNoticeFmt, req.Service.MinimumNoticeHours)
		return result, nil
	}

	result.Available = true
	result.Reason = ReasonAvailable
	return result, nil
}

// SelectRule выбирает правило, покрывающее t: правило услуги имеет приоритет
// над общим. Среди равных побеждает первое в порядке rules.
func SelectRule(rules []*domain.AvailabilityRule, serviceID int64, t types.TimeString) *domain.AvailabilityRule {
	var general *domain.AvailabilityRule

	for _, rule := range rules {
		if !rule.IsActive || !rule.Covers(t) {
			continue
		}
		switch scope := rule.Scope.(type) {
		case domain.ServiceSpecific:
			if scope.ServiceID == serviceID {
				return rule
			}
		case domain.General:
			if general == nil {
				general = rule
			}
		}
	}

	return general
}
