package reschedule_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
)

const customerID = int64(1)

var (
	// Friday 2025-06-06 10:00 UTC
	now       = time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)
	monday    = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	tuesday   = monday.AddDate(0, 0, 1)
	wednesday = monday.AddDate(0, 0, 2)
)

type nopMetrics struct{}

func (nopMetrics) IncBooking(operation, outcome string) {}
func (nopMetrics) IncRejection(kind string)             {}

type fixture struct {
	store    *memstore.Store
	uc       *UseCase
	provider *domain.Provider
	service  *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()

	hours := domain.OpeningWindow{Open: "09:00", Close: "17:00"}
	provider := store.AddProvider(domain.Provider{
		OwnerUserID:           100,
		BusinessName:          "Lotus Spa",
		Status:                domain.ProviderApproved,
		AcceptsOnlineBookings: true,
		OperatingHours: domain.OperatingHours{
			domain.Monday:    hours,
			domain.Tuesday:   hours,
			domain.Wednesday: hours,
		},
	})
	service := store.AddService(domain.Service{ProviderID: provider.ID, Name: "Yoga class", MaxParticipants: 5, IsActive: true, IsBookable: true})
	for _, wd := range []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday} {
		store.AddRule(domain.AvailabilityRule{
			ProviderID:  provider.ID,
			Scope:       domain.General{},
			Weekday:     wd,
			StartTime:   "09:00",
			EndTime:     "17:00",
			MaxBookings: 2,
			IsActive:    true,
		})
	}

	log := logger.NewNop()
	resolver := availability.NewResolver(store.Rules, availability.NewLedger(store.Bookings), time.UTC, log)
	scheduler := notifications.NewScheduler(store.Reminders, time.UTC, log)

	uc := NewUseCase(store.Bookings, store.Providers, resolver, scheduler, memstore.NewTxManager(store),
		domain.DefaultPolicy(time.UTC), nopMetrics{}, log).
		WithTimeProvider(memstore.NewClock(now))

	return &fixture{store: store, uc: uc, provider: provider, service: service}
}

func (f *fixture) book(date time.Time, participants int) *domain.Booking {
	return f.store.AddBooking(domain.Booking{
		UserID:        customerID,
		ProviderID:    f.provider.ID,
		ServiceID:     f.service.ID,
		BookingDate:   date,
		BookingTime:   "10:00",
		Participants:  participants,
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalAmount:   decimal.NewFromInt(3000),
		CustomerName:  "Nimal Perera",
	})
}

func TestUseCase_CreatesNewRowAndClosesOriginal(t *testing.T) {
	f := newFixture(t)
	original := f.book(monday, 1)

	resp, err := f.uc.Execute(context.Background(), &Request{
		PublicID: original.PublicID, UserID: customerID, NewDate: tuesday, NewTime: "11:00", Reason: "Work meeting",
	})
	require.NoError(t, err)

	assert.NotEqual(t, original.PublicID, resp.PublicID)
	assert.Equal(t, original.PublicID, resp.OriginalPublicID)
	assert.Equal(t, 1, resp.RescheduleCount)
	// новая запись ждет подтверждения провайдера, оплата переносится
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.PaymentStatusPaid), resp.PaymentStatus)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(3000)))

	old, _ := f.store.Booking(original.ID)
	assert.Equal(t, domain.StatusRescheduled, old.Status)
	assert.Equal(t, "10:00", old.BookingTime.String())

	moved, _ := f.store.Booking(resp.ID)
	require.NotNil(t, moved.OriginalBookingID)
	assert.Equal(t, original.ID, *moved.OriginalBookingID)
	assert.True(t, domain.IsSameDay(tuesday, moved.BookingDate))
	assert.Equal(t, "11:00", moved.BookingTime.String())
	assert.Equal(t, "Nimal Perera", moved.CustomerName)
	assert.Equal(t, domain.StatusPending, moved.Status)
	assert.Equal(t, domain.PaymentStatusPaid, moved.PaymentStatus)
	assert.Nil(t, moved.ConfirmedAt)

	var kinds []domain.ReminderType
	for _, r := range f.store.AllReminders() {
		assert.Equal(t, resp.ID, r.BookingID)
		kinds = append(kinds, r.Type)
	}
	assert.Equal(t, []domain.ReminderType{
		domain.ReminderReschedule, domain.ReminderConfirmation, domain.Reminder24h, domain.Reminder2h,
	}, kinds)
}

func TestUseCase_ChainIsBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	current := f.book(monday, 1).PublicID

	for i, date := range []time.Time{tuesday, wednesday} {
		resp, err := f.uc.Execute(ctx, &Request{PublicID: current, UserID: customerID, NewDate: date, NewTime: "12:00"})
		require.NoError(t, err)
		assert.Equal(t, i+1, resp.RescheduleCount)
		current = resp.PublicID
	}

	_, err := f.uc.Execute(ctx, &Request{PublicID: current, UserID: customerID, NewDate: monday, NewTime: "14:00"})
	assert.ErrorIs(t, err, ErrCannotReschedule)

	for _, b := range f.store.AllBookings() {
		assert.LessOrEqual(t, b.RescheduleCount, 2)
	}
}

func TestUseCase_OwnSlotDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	original := f.book(monday, 2)

	resp, err := f.uc.Execute(context.Background(), &Request{
		PublicID: original.PublicID, UserID: customerID, NewDate: monday, NewTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RescheduleCount)
}

func TestUseCase_NewSlotFull(t *testing.T) {
	f := newFixture(t)
	original := f.book(monday, 1)
	f.book(tuesday, 2)

	_, err := f.uc.Execute(context.Background(), &Request{
		PublicID: original.PublicID, UserID: customerID, NewDate: tuesday, NewTime: "10:00",
	})
	var rejection *availability.RejectionError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, "Not enough spots available. Only 0 spots remaining", rejection.Reason)

	old, _ := f.store.Booking(original.ID)
	assert.Equal(t, domain.StatusConfirmed, old.Status)
	assert.Len(t, f.store.AllBookings(), 2)
}

func TestUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture) *domain.Booking
		userID  int64
		wantErr error
	}{
		{
			// Saturday 10:00 starts exactly 24 hours from now
			name:    "at the 24 hour buffer",
			prepare: func(f *fixture) *domain.Booking { return f.book(monday.AddDate(0, 0, -2), 1) },
			userID:  customerID,
			wantErr: ErrCannotReschedule,
		},
		{
			name: "cancelled booking",
			prepare: func(f *fixture) *domain.Booking {
				b := f.book(monday, 1)
				require.NoError(t, f.store.Bookings.Cancel(context.Background(), b.ID, nil, "x", now))
				return b
			},
			userID:  customerID,
			wantErr: ErrCannotReschedule,
		},
		{
			name:    "not the owner",
			prepare: func(f *fixture) *domain.Booking { return f.book(monday, 1) },
			userID:  100,
			wantErr: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := tt.prepare(f)

			_, err := f.uc.Execute(context.Background(), &Request{
				PublicID: b.PublicID, UserID: tt.userID, NewDate: wednesday, NewTime: "11:00",
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.store.AllBookings(), 1)
		})
	}
}
