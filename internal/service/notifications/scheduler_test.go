package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
)

var (
	now     = time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)
	details = Details{ProviderName: "Lotus Spa", ServiceName: "Yoga class"}
)

func kinds(reminders []*domain.BookingReminder) []domain.ReminderType {
	result := make([]domain.ReminderType, len(reminders))
	for i, r := range reminders {
		result[i] = r.Type
	}
	return result
}

func TestPlanBooking(t *testing.T) {
	b := &domain.Booking{ID: 1, BookingDate: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), BookingTime: "10:00"}

	tests := []struct {
		name     string
		startsAt time.Time
		want     []domain.ReminderType
	}{
		{
			name:     "three days out",
			startsAt: now.Add(72 * time.Hour),
			want:     []domain.ReminderType{domain.ReminderConfirmation, domain.Reminder24h, domain.Reminder2h},
		},
		{
			name:     "ten hours out",
			startsAt: now.Add(10 * time.Hour),
			want:     []domain.ReminderType{domain.ReminderConfirmation, domain.Reminder2h},
		},
		{
			name:     "exactly 24 hours out",
			startsAt: now.Add(24 * time.Hour),
			want:     []domain.ReminderType{domain.ReminderConfirmation, domain.Reminder2h},
		},
		{
			name:     "one hour out",
			startsAt: now.Add(time.Hour),
			want:     []domain.ReminderType{domain.ReminderConfirmation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanBooking(b, details, tt.startsAt, now)
			assert.Equal(t, tt.want, kinds(got))
			for _, r := range got {
				assert.False(t, r.ScheduledFor.Before(now))
				assert.Equal(t, domain.ReminderStatusPending, r.Status)
			}
		})
	}
}

func TestPlanBooking_Content(t *testing.T) {
	b := &domain.Booking{ID: 1, BookingDate: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), BookingTime: "10:00"}
	startsAt := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

	got := PlanBooking(b, details, startsAt, now)
	require.Len(t, got, 3)

	assert.Equal(t, domain.DeliveryEmail, got[0].DeliveryMethod)
	assert.Equal(t, "Booking Confirmation - Lotus Spa", got[0].Subject)
	assert.Equal(t, "Your booking for Yoga class on 2025-06-09 at 10:00 has been confirmed.", got[0].Message)

	assert.Equal(t, startsAt.Add(-24*time.Hour), got[1].ScheduledFor)
	assert.Equal(t, domain.DeliveryEmail, got[1].DeliveryMethod)

	assert.Equal(t, startsAt.Add(-2*time.Hour), got[2].ScheduledFor)
	assert.Equal(t, domain.DeliverySMS, got[2].DeliveryMethod)
}

func TestScheduler_PersistsAndCancels(t *testing.T) {
	store := memstore.New()
	scheduler := NewScheduler(store.Reminders, time.UTC, logger.NewNop())
	ctx := context.Background()

	b := &domain.Booking{ID: 42, BookingDate: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), BookingTime: "10:00"}

	created, err := scheduler.ScheduleBooking(ctx, b, details, now)
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, r := range created {
		assert.NotZero(t, r.ID)
	}

	require.NoError(t, scheduler.CancelPending(ctx, 42))
	_, err = scheduler.ScheduleCancellation(ctx, b, details, now)
	require.NoError(t, err)

	statuses := map[domain.ReminderType]domain.ReminderStatus{}
	for _, r := range store.AllReminders() {
		statuses[r.Type] = r.Status
	}
	assert.Equal(t, domain.ReminderStatusCancelled, statuses[domain.ReminderConfirmation])
	assert.Equal(t, domain.ReminderStatusCancelled, statuses[domain.Reminder24h])
	assert.Equal(t, domain.ReminderStatusPending, statuses[domain.ReminderCancellation])
}

func TestScheduler_Reschedule(t *testing.T) {
	store := memstore.New()
	scheduler := NewScheduler(store.Reminders, time.UTC, logger.NewNop())

	b := &domain.Booking{ID: 7, BookingDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), BookingTime: "15:30"}

	created, err := scheduler.ScheduleReschedule(context.Background(), b, details, "client asked", now)
	require.NoError(t, err)
	assert.Equal(t, []domain.ReminderType{
		domain.ReminderReschedule,
		domain.ReminderConfirmation,
		domain.Reminder24h,
		domain.Reminder2h,
	}, kinds(created))
	assert.Contains(t, created[0].Message, "2025-06-12 at 15:30")
	assert.Contains(t, created[0].Message, "Reason: client asked")
}
