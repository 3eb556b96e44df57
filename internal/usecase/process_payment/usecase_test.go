package process_payment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/gateways"
	"github.com/m04kA/SMC-WellnessBooking/internal/testutil/memstore"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

const customerID = int64(1)

var now = time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)

type fakeMetrics struct {
	payments map[string]int
}

func (m *fakeMetrics) IncPayment(method, status string) {
	m.payments[method+"/"+status]++
}

type failingGateway struct{ err error }

func (g failingGateway) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*gateways.Result, error) {
	return nil, g.err
}

type panickingGateway struct{}

func (panickingGateway) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*gateways.Result, error) {
	panic("gateway exploded")
}

// countingGateway списывает сразу и считает списания
type countingGateway struct {
	charges atomic.Int32
}

func (g *countingGateway) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*gateways.Result, error) {
	g.charges.Add(1)
	return &gateways.Result{Status: domain.PaymentStateCompleted, TransactionID: ptr.Ptr("pi_1")}, nil
}

// blockingGateway держит списание, пока тест не отпустит release
type blockingGateway struct {
	entered chan struct{}
	release chan struct{}
	charges atomic.Int32
}

func (g *blockingGateway) Charge(ctx context.Context, p *domain.BookingPayment, data map[string]interface{}) (*gateways.Result, error) {
	g.charges.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return &gateways.Result{Status: domain.PaymentStateCompleted, TransactionID: ptr.Ptr("pi_2")}, nil
}

type fixture struct {
	store    *memstore.Store
	registry *gateways.Registry
	metrics  *fakeMetrics
	uc       *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	clock := func() time.Time { return now }

	registry := gateways.NewRegistry().
		Register(domain.PaymentPayHere, gateways.NewPayHere(clock)).
		Register(domain.PaymentFrimi, gateways.NewFrimi(clock)).
		Register(domain.PaymentCash, gateways.NewCash())
	metrics := &fakeMetrics{payments: map[string]int{}}

	uc := NewUseCase(store.Bookings, store.Payments, registry, memstore.NewTxManager(store),
		decimal.RequireFromString("0.10"), metrics, logger.NewNop()).
		WithTimeProvider(memstore.NewClock(now))

	return &fixture{store: store, registry: registry, metrics: metrics, uc: uc}
}

func (f *fixture) book(status domain.BookingStatus, paymentStatus domain.PaymentStatus) *domain.Booking {
	return f.store.AddBooking(domain.Booking{
		UserID:        customerID,
		ProviderID:    1,
		ServiceID:     2,
		BookingDate:   time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		BookingTime:   "10:00",
		Participants:  2,
		Status:        status,
		PaymentStatus: paymentStatus,
		TotalAmount:   decimal.RequireFromString("5001.00"),
		Currency:      "LKR",
	})
}

func TestUseCase_GatewaySuccessConfirmsBooking(t *testing.T) {
	tests := []struct {
		method string
		txID   string
	}{
		{method: "payhere", txID: "PH_20250606100000"},
		{method: "frimi", txID: "FR_20250606100000"},
		{method: "", txID: "PH_20250606100000"},
	}

	for _, tt := range tests {
		t.Run("method "+tt.method, func(t *testing.T) {
			f := newFixture(t)
			b := f.book(domain.StatusPending, domain.PaymentStatusPending)

			resp, err := f.uc.Execute(context.Background(), &Request{PublicID: b.PublicID, UserID: customerID, Method: tt.method})
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, string(domain.PaymentStateCompleted), resp.Status)
			require.NotNil(t, resp.GatewayTransactionID)
			assert.Equal(t, tt.txID, *resp.GatewayTransactionID)
			require.NotNil(t, resp.ProcessedAt)

			stored, _ := f.store.Booking(b.ID)
			assert.Equal(t, domain.StatusConfirmed, stored.Status)
			assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
			require.NotNil(t, stored.ConfirmedAt)

			payments := f.store.AllPayments()
			require.Len(t, payments, 1)
			assert.Equal(t, domain.PaymentStateCompleted, payments[0].Status)
		})
	}
}

func TestUseCase_CommissionSplit(t *testing.T) {
	f := newFixture(t)
	b := f.book(domain.StatusPending, domain.PaymentStatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{PublicID: b.PublicID, UserID: customerID, Method: "payhere"})
	require.NoError(t, err)

	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("5001.00")))
	assert.True(t, resp.PlatformCommission.Equal(decimal.RequireFromString("500.10")), "commission %s", resp.PlatformCommission)
	assert.True(t, resp.ProviderAmount.Equal(decimal.RequireFromString("4500.90")), "provider %s", resp.ProviderAmount)
	assert.True(t, resp.PlatformCommission.Add(resp.ProviderAmount).Equal(resp.Amount))
}

func TestUseCase_CashConfirmsWithPendingPayment(t *testing.T) {
	f := newFixture(t)
	b := f.book(domain.StatusPending, domain.PaymentStatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{PublicID: b.PublicID, UserID: customerID, Method: "cash"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, string(domain.PaymentStatePending), resp.Status)
	assert.Nil(t, resp.ProcessedAt)
	assert.Equal(t, string(domain.StatusConfirmed), resp.BookingStatus)
	assert.Equal(t, string(domain.PaymentStatusPending), resp.BookingPaymentStatus)

	stored, _ := f.store.Booking(b.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, domain.PaymentStatusPending, stored.PaymentStatus)
}

func TestUseCase_GatewayFailureIsRecorded(t *testing.T) {
	tests := []struct {
		name    string
		method  domain.PaymentMethod
		gateway gateways.Gateway
		reason  string
	}{
		{
			name:   "unsupported method",
			method: domain.PaymentWallet,
			reason: UnsupportedMethodReason,
		},
		{
			name:    "gateway error",
			method:  domain.PaymentCard,
			gateway: failingGateway{err: errors.New("card declined")},
			reason:  "card declined",
		},
		{
			name:    "gateway panic",
			method:  domain.PaymentCard,
			gateway: panickingGateway{},
			reason:  "gateways: gateway panicked: gateway exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.gateway != nil {
				f.registry.Register(tt.method, tt.gateway)
			}
			b := f.book(domain.StatusPending, domain.PaymentStatusPending)

			resp, err := f.uc.Execute(context.Background(), &Request{PublicID: b.PublicID, UserID: customerID, Method: string(tt.method)})
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Equal(t, string(domain.PaymentStateFailed), resp.Status)
			require.NotNil(t, resp.FailedReason)
			assert.Equal(t, tt.reason, *resp.FailedReason)

			payments := f.store.AllPayments()
			require.Len(t, payments, 1)
			assert.Equal(t, domain.PaymentStateFailed, payments[0].Status)
			assert.Equal(t, tt.reason, *payments[0].FailedReason)

			stored, _ := f.store.Booking(b.ID)
			assert.Equal(t, domain.StatusPending, stored.Status)
			assert.Equal(t, domain.PaymentStatusPending, stored.PaymentStatus)
			assert.Equal(t, 1, f.metrics.payments[string(tt.method)+"/failed"])
		})
	}
}

func TestUseCase_RetryAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.registry.Register(domain.PaymentCard, failingGateway{err: errors.New("card declined")})
	b := f.book(domain.StatusPending, domain.PaymentStatusPending)
	ctx := context.Background()

	resp, err := f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "card"})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "payhere"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, f.store.AllPayments(), 2)
}

func TestUseCase_Guards(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture) *Request
		wantErr error
	}{
		{
			name: "already paid",
			prepare: func(f *fixture) *Request {
				b := f.book(domain.StatusConfirmed, domain.PaymentStatusPaid)
				return &Request{PublicID: b.PublicID, UserID: customerID}
			},
			wantErr: ErrAlreadyPaid,
		},
		{
			name: "cancelled booking",
			prepare: func(f *fixture) *Request {
				b := f.book(domain.StatusCancelled, domain.PaymentStatusPending)
				return &Request{PublicID: b.PublicID, UserID: customerID}
			},
			wantErr: ErrCannotPay,
		},
		{
			name: "not the owner",
			prepare: func(f *fixture) *Request {
				b := f.book(domain.StatusPending, domain.PaymentStatusPending)
				return &Request{PublicID: b.PublicID, UserID: 2}
			},
			wantErr: ErrAccessDenied,
		},
		{
			name: "unknown booking",
			prepare: func(f *fixture) *Request {
				return &Request{PublicID: uuid.New(), UserID: customerID}
			},
			wantErr: ErrBookingNotFound,
		},
		{
			name: "unknown method",
			prepare: func(f *fixture) *Request {
				b := f.book(domain.StatusPending, domain.PaymentStatusPending)
				return &Request{PublicID: b.PublicID, UserID: customerID, Method: "bitcoin"}
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.uc.Execute(context.Background(), tt.prepare(f))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.AllPayments())
		})
	}
}

func TestUseCase_AttemptInFlightBlocksSecondCharge(t *testing.T) {
	f := newFixture(t)
	gw := &blockingGateway{entered: make(chan struct{}, 1), release: make(chan struct{})}
	f.registry.Register(domain.PaymentCard, gw)
	b := f.book(domain.StatusPending, domain.PaymentStatusPending)
	ctx := context.Background()

	type outcome struct {
		resp *Response
		err  error
	}
	first := make(chan outcome, 1)
	go func() {
		resp, err := f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "card"})
		first <- outcome{resp: resp, err: err}
	}()
	<-gw.entered

	// первая попытка у шлюза и записана как processing
	payments := f.store.AllPayments()
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentStateProcessing, payments[0].Status)

	_, err := f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "card"})
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	close(gw.release)
	got := <-first
	require.NoError(t, got.err)
	assert.True(t, got.resp.Success)

	assert.Equal(t, int32(1), gw.charges.Load())
	payments = f.store.AllPayments()
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentStateCompleted, payments[0].Status)

	_, err = f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "card"})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestUseCase_ConcurrentPaymentsChargeOnce(t *testing.T) {
	const attempts = 8

	f := newFixture(t)
	gw := &countingGateway{}
	f.registry.Register(domain.PaymentCard, gw)
	b := f.book(domain.StatusPending, domain.PaymentStatusPending)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		errs      []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			resp, err := f.uc.Execute(context.Background(), &Request{PublicID: b.PublicID, UserID: customerID, Method: "card"})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if resp.Success {
				successes++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, int32(1), gw.charges.Load())
	require.Len(t, errs, attempts-1)
	for _, err := range errs {
		assert.True(t, errors.Is(err, ErrPaymentInProgress) || errors.Is(err, ErrAlreadyPaid), "unexpected error: %v", err)
	}

	completed := 0
	for _, p := range f.store.AllPayments() {
		if p.Status == domain.PaymentStateCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)

	stored, _ := f.store.Booking(b.ID)
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
}

func TestUseCase_CashCollectionPendingBlocksNewAttempt(t *testing.T) {
	f := newFixture(t)
	b := f.book(domain.StatusPending, domain.PaymentStatusPending)
	ctx := context.Background()

	resp, err := f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "cash"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	_, err = f.uc.Execute(ctx, &Request{PublicID: b.PublicID, UserID: customerID, Method: "payhere"})
	assert.ErrorIs(t, err, ErrPaymentInProgress)
	assert.Len(t, f.store.AllPayments(), 1)
}
