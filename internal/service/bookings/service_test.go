package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

const (
	customerID = int64(1)
	ownerID    = int64(100)
	strangerID = int64(555)
)

var (
	now    = time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)
	monday = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store     *memstore.Store
	scheduler *notifications.Scheduler
	svc       *Service
	provider  *domain.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	provider := store.AddProvider(domain.Provider{OwnerUserID: ownerID, BusinessName: "Lotus Spa", Status: domain.ProviderApproved})

	log := logger.NewNop()
	scheduler := notifications.NewScheduler(store.Reminders, time.UTC, log)
	svc := NewService(store.Bookings, store.Providers, scheduler, memstore.NewTxManager(store), log).
		WithTimeProvider(memstore.NewClock(now))

	return &fixture{store: store, scheduler: scheduler, svc: svc, provider: provider}
}

func (f *fixture) book(userID int64, date time.Time, status domain.BookingStatus) *domain.Booking {
	return f.store.AddBooking(domain.Booking{
		UserID:       userID,
		ProviderID:   f.provider.ID,
		ServiceID:    10,
		BookingDate:  date,
		BookingTime:  "10:00",
		Participants: 1,
		Status:       status,
		ServicePrice: decimal.RequireFromString("2500.5"),
		TotalAmount:  decimal.RequireFromString("2500.5"),
		Currency:     "LKR",
		CustomerName: "Nimal Perera",
	})
}

func TestService_GetByPublicID(t *testing.T) {
	f := newFixture(t)
	b := f.book(customerID, monday, domain.StatusPending)
	ctx := context.Background()

	resp, err := f.svc.GetByPublicID(ctx, b.PublicID, customerID)
	require.NoError(t, err)
	assert.Equal(t, b.PublicID, resp.BookingID)
	assert.Equal(t, "2025-06-09", resp.BookingDate)
	assert.Equal(t, "10:00", resp.BookingTime)
	assert.Equal(t, "2500.50", resp.TotalAmount)

	_, err = f.svc.GetByPublicID(ctx, b.PublicID, ownerID)
	assert.NoError(t, err)

	_, err = f.svc.GetByPublicID(ctx, b.PublicID, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByPublicID(ctx, uuid.New(), customerID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetUserBookings(t *testing.T) {
	f := newFixture(t)
	f.book(customerID, monday, domain.StatusPending)
	f.book(customerID, monday, domain.StatusCancelled)
	f.book(strangerID, monday, domain.StatusPending)
	ctx := context.Background()

	resp, err := f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{RequesterID: customerID, UserID: customerID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	resp, err = f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{
		RequesterID: customerID, UserID: customerID, Status: ptr.Ptr("cancelled"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "cancelled", resp.Bookings[0].Status)

	_, err = f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{RequesterID: customerID, UserID: customerID, Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{RequesterID: strangerID, UserID: customerID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_GetProviderBookings(t *testing.T) {
	f := newFixture(t)
	f.book(customerID, monday, domain.StatusPending)
	f.book(customerID, monday.AddDate(0, 0, 1), domain.StatusConfirmed)
	ctx := context.Background()

	resp, err := f.svc.GetProviderBookings(ctx, &models.GetProviderBookingsRequest{UserID: ownerID, ProviderID: f.provider.ID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	resp, err = f.svc.GetProviderBookings(ctx, &models.GetProviderBookingsRequest{
		UserID: ownerID, ProviderID: f.provider.ID, Date: ptr.Ptr(monday),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "2025-06-09", resp.Bookings[0].BookingDate)

	_, err = f.svc.GetProviderBookings(ctx, &models.GetProviderBookingsRequest{UserID: customerID, ProviderID: f.provider.ID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetProviderBookings(ctx, &models.GetProviderBookingsRequest{UserID: ownerID, ProviderID: 999})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	b := f.book(customerID, monday, domain.StatusPending)
	ctx := context.Background()

	_, err := f.scheduler.ScheduleBooking(ctx, b, notifications.Details{}, now)
	require.NoError(t, err)

	resp, err := f.svc.UpdateStatus(ctx, b.PublicID, &models.UpdateStatusRequest{UserID: ownerID, Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	require.NotNil(t, resp.ConfirmedAt)

	// confirmed keeps reminders, completed drops the pending ones
	for _, r := range f.store.AllReminders() {
		assert.Equal(t, domain.ReminderStatusPending, r.Status)
	}

	_, err = f.svc.UpdateStatus(ctx, b.PublicID, &models.UpdateStatusRequest{UserID: ownerID, Status: "completed"})
	require.NoError(t, err)
	for _, r := range f.store.AllReminders() {
		assert.Equal(t, domain.ReminderStatusCancelled, r.Status)
	}

	stored, _ := f.store.Booking(b.ID)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	// completed is terminal
	_, err = f.svc.UpdateStatus(ctx, b.PublicID, &models.UpdateStatusRequest{UserID: ownerID, Status: "no_show"})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestService_UpdateStatusRejects(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		status  string
		wantErr error
	}{
		{name: "customer cannot set status", userID: customerID, status: "completed", wantErr: ErrAccessDenied},
		{name: "cancelled is not a provider status", userID: ownerID, status: "cancelled", wantErr: ErrInvalidStatus},
		{name: "pending is not a provider status", userID: ownerID, status: "pending", wantErr: ErrInvalidStatus},
		{name: "unknown status", userID: ownerID, status: "in_progress", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := f.book(customerID, monday, domain.StatusPending)

			_, err := f.svc.UpdateStatus(context.Background(), b.PublicID, &models.UpdateStatusRequest{UserID: tt.userID, Status: tt.status})
			assert.ErrorIs(t, err, tt.wantErr)

			stored, _ := f.store.Booking(b.ID)
			assert.Equal(t, domain.StatusPending, stored.Status)
		})
	}
}
