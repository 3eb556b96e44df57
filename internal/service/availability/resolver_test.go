package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
	"github.com/m04kA/SMC-WellnessBooking/pkg/types"
)

var (
	// Friday 2025-06-06 10:00 UTC
	now    = time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)
	monday = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	store    *memstore.Store
	resolver *Resolver
	provider *domain.Provider
	service  *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()

	provider := store.AddProvider(domain.Provider{
		OwnerUserID:           100,
		BusinessName:          "Lotus Spa",
		Status:                domain.ProviderApproved,
		AcceptsOnlineBookings: true,
		OperatingHours: domain.OperatingHours{
			domain.Monday: {Open: "09:00", Close: "17:00"},
			domain.Friday: {Open: "09:00", Close: "17:00"},
		},
	})
	service := store.AddService(domain.Service{
		ProviderID:         provider.ID,
		Name:               "Yoga class",
		Price:              decimal.NewFromInt(2500),
		DurationMinutes:    60,
		MaxParticipants:    5,
		MinimumNoticeHours: 24,
		IsActive:           true,
		IsBookable:         true,
	})
	store.AddRule(domain.AvailabilityRule{
		ProviderID:  provider.ID,
		Scope:       domain.ServiceSpecific{ServiceID: service.ID},
		Weekday:     domain.Monday,
		StartTime:   "09:00",
		EndTime:     "12:00",
		MaxBookings: 2,
		IsActive:    true,
	})

	resolver := NewResolver(store.Rules, NewLedger(store.Bookings), time.UTC, logger.NewNop())
	return &fixture{store: store, resolver: resolver, provider: provider, service: service}
}

func (f *fixture) request(date time.Time, at types.TimeString, participants int) Request {
	return Request{
		Provider:     f.provider,
		Service:      f.service,
		Date:         date,
		Time:         at,
		Participants: participants,
	}
}

func (f *fixture) book(t *testing.T, date time.Time, at types.TimeString, participants int, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	return f.store.AddBooking(domain.Booking{
		UserID:       1,
		ProviderID:   f.provider.ID,
		ServiceID:    f.service.ID,
		BookingDate:  date,
		BookingTime:  at,
		Participants: participants,
		Status:       status,
	})
}

func TestResolver_CapacityScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.resolver.Check(ctx, f.request(monday, "10:00", 2), now)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, ReasonAvailable, result.Reason)
	assert.Equal(t, 2, result.Capacity)

	f.book(t, monday, "10:00", 2, domain.StatusPending)

	result, err = f.resolver.Check(ctx, f.request(monday, "10:00", 1), now)
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, KindCapacity, result.Kind)
	assert.Equal(t, "Not enough spots available. Only 0 spots remaining", result.Reason)
}

func TestResolver_RejectionReasons(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		date   time.Time
		time   types.TimeString
		kind   RejectionKind
		reason string
	}{
		{
			name:   "past date",
			now:    now,
			date:   now.AddDate(0, 0, -1),
			time:   "10:00",
			kind:   KindPastDate,
			reason: "Cannot book appointments in the past",
		},
		{
			name:   "past time today",
			now:    now,
			date:   now,
			time:   "09:30",
			kind:   KindPastTime,
			reason: "Cannot book appointments for past times today",
		},
		{
			name:   "current minute today",
			now:    now,
			date:   now,
			time:   "10:00",
			kind:   KindPastTime,
			reason: "Cannot book appointments for past times today",
		},
		{
			name:   "closed day",
			now:    now,
			date:   monday.AddDate(0, 0, 1),
			time:   "10:00",
			kind:   KindClosedDay,
			reason: "Provider is not available on this day",
		},
		{
			name:   "outside operating hours",
			now:    now,
			date:   monday,
			time:   "08:30",
			kind:   KindOutsideHours,
			reason: "Provider is not available at this time. Operating hours: 09:00 - 17:00",
		},
		{
			name:   "no rule covers time",
			now:    now,
			date:   monday,
			time:   "12:00",
			kind:   KindNoRule,
			reason: "No availability found for this time slot",
		},
		{
			name:   "minimum notice",
			now:    monday.Add(-13 * time.Hour),
			date:   monday,
			time:   "10:00",
			kind:   KindMinimumNotice,
			reason: "Minimum 24 hours advance notice required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			result, err := f.resolver.Check(context.Background(), f.request(tt.date, tt.time, 1), tt.now)
			require.NoError(t, err)
			assert.False(t, result.Available)
			assert.Equal(t, tt.kind, result.Kind)
			assert.Equal(t, tt.reason, result.Reason)

			var rejection *RejectionError
			require.True(t, errors.As(result.Err(), &rejection))
			assert.Equal(t, tt.reason, rejection.Reason)
			assert.ErrorIs(t, result.Err(), ErrNotAvailable)
		})
	}
}

func TestResolver_ClosingTimeIsInclusive(t *testing.T) {
	f := newFixture(t)
	f.store.AddRule(domain.AvailabilityRule{
		ProviderID:  f.provider.ID,
		Scope:       domain.General{},
		Weekday:     domain.Monday,
		StartTime:   "16:00",
		EndTime:     "18:00",
		MaxBookings: 1,
		IsActive:    true,
	})

	result, err := f.resolver.Check(context.Background(), f.request(monday, "17:00", 1), now)
	require.NoError(t, err)
	assert.True(t, result.Available)

	result, err = f.resolver.Check(context.Background(), f.request(monday, "17:30", 1), now)
	require.NoError(t, err)
	assert.Equal(t, KindOutsideHours, result.Kind)
}

func TestResolver_FallsBackToGeneralRule(t *testing.T) {
	f := newFixture(t)
	general := f.store.AddRule(domain.AvailabilityRule{
		ProviderID:  f.provider.ID,
		Scope:       domain.General{},
		Weekday:     domain.Monday,
		StartTime:   "09:00",
		EndTime:     "17:00",
		MaxBookings: 4,
		IsActive:    true,
	})

	// service rule wins where both cover the time
	result, err := f.resolver.Check(context.Background(), f.request(monday, "10:00", 1), now)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Capacity)

	// only the general rule covers 14:00
	result, err = f.resolver.Check(context.Background(), f.request(monday, "14:00", 3), now)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, general.ID, result.Rule.ID)
	assert.Equal(t, 4, result.Capacity)
}

func TestResolver_IgnoresInactiveAndOtherServices(t *testing.T) {
	f := newFixture(t)

	f.book(t, monday, "10:00", 2, domain.StatusCancelled)
	f.book(t, monday, "10:00", 2, domain.StatusRescheduled)
	other := f.store.AddService(domain.Service{ProviderID: f.provider.ID, IsActive: true, IsBookable: true})
	f.store.AddBooking(domain.Booking{
		ProviderID:   f.provider.ID,
		ServiceID:    other.ID,
		BookingDate:  monday,
		BookingTime:  "10:00",
		Participants: 2,
		Status:       domain.StatusConfirmed,
	})

	result, err := f.resolver.Check(context.Background(), f.request(monday, "10:00", 2), now)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 0, result.Occupied)
}

func TestResolver_ExcludeBooking(t *testing.T) {
	f := newFixture(t)
	own := f.book(t, monday, "10:00", 2, domain.StatusConfirmed)

	req := f.request(monday, "10:00", 2)
	result, err := f.resolver.Check(context.Background(), req, now)
	require.NoError(t, err)
	assert.False(t, result.Available)

	req.ExcludeBookingID = &own.ID
	result, err = f.resolver.Check(context.Background(), req, now)
	require.NoError(t, err)
	assert.True(t, result.Available)
}

func TestResolver_Deterministic(t *testing.T) {
	f := newFixture(t)
	f.book(t, monday, "10:00", 1, domain.StatusConfirmed)

	first, err := f.resolver.Check(context.Background(), f.request(monday, "10:00", 2), now)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := f.resolver.Check(context.Background(), f.request(monday, "10:00", 2), now)
		require.NoError(t, err)
		assert.Equal(t, first.Reason, again.Reason)
		assert.Equal(t, first.Available, again.Available)
	}
	assert.Equal(t, "Not enough spots available. Only 1 spots remaining", first.Reason)
}

func TestResolver_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Check(context.Background(), f.request(monday, "10:00", 0), now)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.resolver.Check(context.Background(), Request{Time: "10:00", Participants: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestResolver_UsesConfiguredTimezone(t *testing.T) {
	f := newFixture(t)
	colombo := time.FixedZone("LKT", 5*3600+1800)
	f.resolver = NewResolver(f.store.Rules, NewLedger(f.store.Bookings), colombo, logger.NewNop())
	f.service.MinimumNoticeHours = 0

	// 2025-06-09 04:00 UTC is 09:30 Monday in Colombo, so 09:00 is already past
	mondayMorning := time.Date(2025, 6, 9, 4, 0, 0, 0, time.UTC)

	result, err := f.resolver.Check(context.Background(), f.request(monday, "09:00", 1), mondayMorning)
	require.NoError(t, err)
	assert.Equal(t, KindPastTime, result.Kind)

	result, err = f.resolver.Check(context.Background(), f.request(monday, "10:00", 1), mondayMorning)
	require.NoError(t, err)
	assert.True(t, result.Available)
}

func TestSelectRule(t *testing.T) {
	rules := []*domain.AvailabilityRule{
		{ID: 1, Scope: domain.General{}, StartTime: "09:00", EndTime: "12:00", IsActive: true},
		{ID: 2, Scope: domain.ServiceSpecific{ServiceID: 9}, StartTime: "09:00", EndTime: "12:00", IsActive: true},
		{ID: 3, Scope: domain.ServiceSpecific{ServiceID: 5}, StartTime: "09:00", EndTime: "10:00", IsActive: true},
	}

	assert.Equal(t, int64(3), SelectRule(rules, 5, "09:30").ID)
	assert.Equal(t, int64(1), SelectRule(rules, 5, "10:30").ID)
	assert.Equal(t, int64(2), SelectRule(rules, 9, "11:59").ID)
	assert.Nil(t, SelectRule(rules, 5, "12:00"))
}
