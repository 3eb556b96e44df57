package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

var (
	// Friday 2025-06-06 10:00 UTC
	now    = time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)
	monday = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
)

type fakeUserClient struct {
	profile *userservice.Profile
	err     error
	calls   int
}

func (f *fakeUserClient) GetProfileWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.Profile, error) {
	f.calls++
	return f.profile, f.err
}

type fakeMetrics struct {
	mu         sync.Mutex
	outcomes   map[string]int
	rejections map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{outcomes: map[string]int{}, rejections: map[string]int{}}
}

func (m *fakeMetrics) IncBooking(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[operation+"/"+outcome]++
}

func (m *fakeMetrics) IncRejection(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[kind]++
}

type fixture struct {
	store    *memstore.Store
	users    *fakeUserClient
	metrics  *fakeMetrics
	uc       *UseCase
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
		},
	})
	service := store.AddService(domain.Service{
		ProviderID:         provider.ID,
		Name:               "Yoga class",
		Price:              decimal.RequireFromString("2500.50"),
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

	log := logger.NewNop()
	resolver := availability.NewResolver(store.Rules, availability.NewLedger(store.Bookings), time.UTC, log)
	scheduler := notifications.NewScheduler(store.Reminders, time.UTC, log)
	users := &fakeUserClient{}
	metrics := newFakeMetrics()

	uc := NewUseCase(store.Providers, store.Bookings, resolver, scheduler, users,
		memstore.NewTxManager(store), metrics, "LKR", log).
		WithTimeProvider(memstore.NewClock(now))

	return &fixture{store: store, users: users, metrics: metrics, uc: uc, provider: provider, service: service}
}

func (f *fixture) request(participants int) *Request {
	return &Request{
		UserID:        1,
		ProviderID:    f.provider.ID,
		ServiceID:     f.service.ID,
		Date:          monday,
		Time:          "10:00",
		Participants:  participants,
		CustomerName:  "Nimal Perera",
		CustomerPhone: "+94770000000",
		CustomerEmail: "nimal@example.com",
	}
}

func TestUseCase_CreatesBooking(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), f.request(2))
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.NotEqual(t, resp.PublicID, resp.ConfirmationToken)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.PaymentStatusPending), resp.PaymentStatus)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "LKR", resp.Currency)
	assert.True(t, resp.ServicePrice.Equal(decimal.RequireFromString("2500.50")))
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("5001.00")), "total %s", resp.TotalAmount)

	assert.Equal(t, 1, f.store.Provider(f.provider.ID).TotalBookings)
	assert.Equal(t, 3, resp.Reminders)
	assert.Len(t, f.store.AllReminders(), 3)
	assert.Equal(t, 1, f.metrics.outcomes["create/created"])
	assert.Zero(t, f.users.calls)
}

func TestUseCase_RejectsWithResolverReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, f.request(2))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, f.request(1))
	require.Error(t, err)

	var rejection *availability.RejectionError
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, "Not enough spots available. Only 0 spots remaining", rejection.Reason)
	assert.ErrorIs(t, err, availability.ErrNotAvailable)

	// the rejected attempt leaves no trace
	assert.Len(t, f.store.AllBookings(), 1)
	assert.Len(t, f.store.AllReminders(), 3)
	assert.Equal(t, 1, f.store.Provider(f.provider.ID).TotalBookings)
	assert.Equal(t, 1, f.metrics.rejections[string(availability.KindCapacity)])
}

func TestUseCase_ConcurrentBookingsNeverExceedCapacity(t *testing.T) {
	f := newFixture(t)

	const attempts = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			req := f.request(1)
			req.UserID = userID

			_, err := f.uc.Execute(context.Background(), req)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			var rejection *availability.RejectionError
			if errors.As(err, &rejection) {
				rejected++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	assert.Equal(t, attempts-2, rejected)

	total := 0
	for _, b := range f.store.AllBookings() {
		if b.Status.IsActive() {
			total += b.Participants
		}
	}
	assert.LessOrEqual(t, total, 2)
	assert.Equal(t, 2, f.store.Provider(f.provider.ID).TotalBookings)
}

func TestUseCase_ContactFallback(t *testing.T) {
	f := newFixture(t)
	f.users.profile = &userservice.Profile{
		FirstName: "Kamala",
		LastName:  "Silva",
		Email:     "kamala@example.com",
		Phone:     "+94771111111",
	}

	req := f.request(1)
	req.CustomerName = ""
	req.CustomerEmail = ""

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.calls)
	assert.Equal(t, "Kamala Silva", resp.CustomerName)
	assert.Equal(t, "+94770000000", resp.CustomerPhone)
	assert.Equal(t, "kamala@example.com", resp.CustomerEmail)
}

func TestUseCase_ContactRequiredWhenProfileUnavailable(t *testing.T) {
	f := newFixture(t)
	f.users.err = userservice.ErrServiceDegraded

	req := f.request(1)
	req.CustomerName = ""

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrContactRequired)
	assert.Empty(t, f.store.AllBookings())
}

func TestUseCase_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture, req *Request)
		wantErr error
	}{
		{
			name:    "zero participants",
			prepare: func(f *fixture, req *Request) { req.Participants = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "invalid time",
			prepare: func(f *fixture, req *Request) { req.Time = "25:00" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "special requests too long",
			prepare: func(f *fixture, req *Request) { req.SpecialRequests = ptr.Ptr(string(make([]byte, 1001))) },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown provider",
			prepare: func(f *fixture, req *Request) { req.ProviderID = 999 },
			wantErr: ErrProviderNotFound,
		},
		{
			name:    "unknown service",
			prepare: func(f *fixture, req *Request) { req.ServiceID = 999 },
			wantErr: ErrServiceNotFound,
		},
		{
			name: "provider not accepting online bookings",
			prepare: func(f *fixture, req *Request) {
				p := f.store.Provider(f.provider.ID)
				p.AcceptsOnlineBookings = false
				f.store.AddProvider(p)
			},
			wantErr: ErrProviderNotBookable,
		},
		{
			name: "inactive service",
			prepare: func(f *fixture, req *Request) {
				svc := *f.service
				svc.IsActive = false
				f.store.AddService(svc)
			},
			wantErr: ErrServiceNotBookable,
		},
		{
			name:    "too many participants",
			prepare: func(f *fixture, req *Request) { req.Participants = 6 },
			wantErr: ErrTooManyParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.request(1)
			tt.prepare(f, req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.AllBookings())
		})
	}
}

func TestUseCase_TotalAmountIsPriceTimesParticipants(t *testing.T) {
	for participants := 1; participants <= 2; participants++ {
		f := newFixture(t)
		resp, err := f.uc.Execute(context.Background(), f.request(participants))
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(resp.ServicePrice.Mul(decimal.NewFromInt(int64(participants)))))
	}
}
