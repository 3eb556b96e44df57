package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

const (
	dayBefore   = 24 * time.Hour
	hoursBefore = 2 * time.Hour
)

// Details названия для текста напоминаний
type Details struct {
	ProviderName string
	ServiceName  string
}

// Scheduler ставит напоминания в очередь (таблица booking_reminders).
// Доставкой занимается worker/reminders.
type Scheduler struct {
	repo     ReminderRepository
	location *time.Location
	logger   Logger
}

func NewScheduler(repo ReminderRepository, location *time.Location, logger Logger) *Scheduler {
	return &Scheduler{repo: repo, location: location, logger: logger}
}

// ScheduleBooking подтверждение сразу, за 24 часа и за 2 часа до начала.
// Напоминание, чей момент уже прошел, не создается.
func (s *Scheduler) ScheduleBooking(ctx context.Context, b *domain.Booking, d Details, now time.Time) ([]*domain.BookingReminder, error) {
	startsAt, err := b.StartsAt(s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: ScheduleBooking - booking %d start: %v", ErrSchedule, b.ID, err)
	}
	return s.save(ctx, "ScheduleBooking", b, PlanBooking(b, d, startsAt, now))
}

// ScheduleCancellation уведомление об отмене
func (s *Scheduler) ScheduleCancellation(ctx context.Context, b *domain.Booking, d Details, now time.Time) ([]*domain.BookingReminder, error) {
	reminder := &domain.BookingReminder{
		BookingID:      b.ID,
		Type:           domain.ReminderCancellation,
		DeliveryMethod: domain.DeliveryEmail,
		ScheduledFor:   now,
		Subject:        fmt.Sprintf("Booking Cancelled - %s", d.ProviderName),
		Message: fmt.Sprintf("Your booking for %s on %s has been cancelled.",
			d.ServiceName, b.BookingDate.Format(domain.DateFormat)),
		Status: domain.ReminderStatusPending,
	}
	return s.save(ctx, "ScheduleCancellation", b, []*domain.BookingReminder{reminder})
}

// ScheduleReschedule уведомление о переносе плюс полный набор напоминаний для новой записи
func (s *Scheduler) ScheduleReschedule(ctx context.Context, b *domain.Booking, d Details, reason string, now time.Time) ([]*domain.BookingReminder, error) {
	startsAt, err := b.StartsAt(s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: ScheduleReschedule - booking %d start: %v", ErrSchedule, b.ID, err)
	}

	message := fmt.Sprintf("Your booking for %s has been moved to %s at %s.",
		d.ServiceName, b.BookingDate.Format(domain.DateFormat), b.BookingTime)
	if reason != "" {
		message += " Reason: " + reason
	}

	reminders := append([]*domain.BookingReminder{{
		BookingID:      b.ID,
		Type:           domain.ReminderReschedule,
		DeliveryMethod: domain.DeliveryEmail,
		ScheduledFor:   now,
		Subject:        fmt.Sprintf("Booking Rescheduled - %s", d.ProviderName),
		Message:        message,
		Status:         domain.ReminderStatusPending,
	}}, PlanBooking(b, d, startsAt, now)...)

	return s.save(ctx, "ScheduleReschedule", b, reminders)
}

// CancelPending отменяет неотправленные напоминания бронирования
func (s *Scheduler) CancelPending(ctx context.Context, bookingID int64) error {
	n, err := s.repo.CancelPending(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("%w: booking %d: %w", ErrCancelPending, bookingID, err)
	}
	if n > 0 {
		s.logger.Info("CancelPending: cancelled %d pending reminders of booking %d", n, bookingID)
	}
	return nil
}

func (s *Scheduler) save(ctx context.Context, op string, b *domain.Booking, reminders []*domain.BookingReminder) ([]*domain.BookingReminder, error) {
	if err := s.repo.CreateBatch(ctx, reminders); err != nil {
		return nil, fmt.Errorf("%w: %s - booking %d: %w", ErrSchedule, op, b.ID, err)
	}
	return reminders, nil
}

// PlanBooking набор напоминаний для нового бронирования
func PlanBooking(b *domain.Booking, d Details, startsAt, now time.Time) []*domain.BookingReminder {
	date := b.BookingDate.Format(domain.DateFormat)

	reminders := []*domain.BookingReminder{{
		BookingID:      b.ID,
		Type:           domain.ReminderConfirmation,
		DeliveryMethod: domain.DeliveryEmail,
		ScheduledFor:   now,
		Subject:        fmt.Sprintf("Booking Confirmation - %s", d.ProviderName),
		Message: fmt.Sprintf("Your booking for %s on %s at %s has been confirmed.",
			d.ServiceName, date, b.BookingTime),
		Status: domain.ReminderStatusPending,
	}}

	if at := startsAt.Add(-dayBefore); at.After(now) {
		reminders = append(reminders, &domain.BookingReminder{
			BookingID:      b.ID,
			Type:           domain.Reminder24h,
			DeliveryMethod: domain.DeliveryEmail,
			ScheduledFor:   at,
			Subject:        fmt.Sprintf("Reminder: Your appointment tomorrow at %s", d.ProviderName),
			Message: fmt.Sprintf("This is a reminder for your %s appointment tomorrow at %s.",
				d.ServiceName, b.BookingTime),
			Status: domain.ReminderStatusPending,
		})
	}

	if at := startsAt.Add(-hoursBefore); at.After(now) {
		reminders = append(reminders, &domain.BookingReminder{
			BookingID:      b.ID,
			Type:           domain.Reminder2h,
			DeliveryMethod: domain.DeliverySMS,
			ScheduledFor:   at,
			Subject:        "Reminder: Appointment in 2 hours",
			Message: fmt.Sprintf("Your %s appointment at %s is in 2 hours.",
				d.ServiceName, d.ProviderName),
			Status: domain.ReminderStatusPending,
		})
	}

	return reminders
}
