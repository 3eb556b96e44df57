// Package memstore is an in-memory stand-in for the postgres repositories.
// It mirrors their sentinel errors and guarded transitions so use cases can
// be tested without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	cancellationRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/cancellation"
	paymentRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/payment"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	reminderRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/reminder"
)

// Store holds all tables behind one mutex
type Store struct {
	mu sync.Mutex

	providers     map[int64]domain.Provider
	services      map[int64]domain.Service
	rules         []domain.AvailabilityRule
	bookings      []domain.Booking
	cancellations []domain.BookingCancellation
	reminders     []domain.BookingReminder
	payments      []domain.BookingPayment
	nextID        int64

	Providers     *Providers
	Rules         *Rules
	Bookings      *Bookings
	Cancellations *Cancellations
	Reminders     *Reminders
	Payments      *Payments
}

func New() *Store {
	s := &Store{
		providers: make(map[int64]domain.Provider),
		services:  make(map[int64]domain.Service),
	}
	s.Providers = &Providers{s: s}
	s.Rules = &Rules{s: s}
	s.Bookings = &Bookings{s: s}
	s.Cancellations = &Cancellations{s: s}
	s.Reminders = &Reminders{s: s}
	s.Payments = &Payments{s: s}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	providers     map[int64]domain.Provider
	services      map[int64]domain.Service
	bookings      []domain.Booking
	cancellations []domain.BookingCancellation
	reminders     []domain.BookingReminder
	payments      []domain.BookingPayment
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		providers:     make(map[int64]domain.Provider, len(s.providers)),
		services:      make(map[int64]domain.Service, len(s.services)),
		bookings:      append([]domain.Booking(nil), s.bookings...),
		cancellations: append([]domain.BookingCancellation(nil), s.cancellations...),
		reminders:     append([]domain.BookingReminder(nil), s.reminders...),
		payments:      append([]domain.BookingPayment(nil), s.payments...),
	}
	for k, v := range s.providers {
		snap.providers[k] = v
	}
	for k, v := range s.services {
		snap.services[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.providers = snap.providers
	s.services = snap.services
	s.bookings = snap.bookings
	s.cancellations = snap.cancellations
	s.reminders = snap.reminders
	s.payments = snap.payments
}

// TxManager runs closures one at a time and rolls the store back when
// the closure fails. One-at-a-time execution models SERIALIZABLE isolation.
type TxManager struct {
	mu    sync.Mutex
	store *Store
	Calls int
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// Clock is a settable TimeProvider
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Seeding helpers

func (s *Store) AddProvider(p domain.Provider) *domain.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.providers[p.ID] = p
	return &p
}

func (s *Store) AddService(svc domain.Service) *domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.id()
	}
	s.services[svc.ID] = svc
	return &svc
}

func (s *Store) AddRule(r domain.AvailabilityRule) *domain.AvailabilityRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.rules = append(s.rules, r)
	return &r
}

// AddBooking inserts a booking bypassing every check
func (s *Store) AddBooking(b domain.Booking) *domain.Booking {
	created, _ := s.Bookings.Create(context.Background(), &b)
	return created
}

// Booking returns a copy of the stored booking
func (s *Store) Booking(id int64) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Booking{}, false
}

// AllBookings returns copies of every stored booking
func (s *Store) AllBookings() []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Booking(nil), s.bookings...)
}

func (s *Store) AllReminders() []domain.BookingReminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BookingReminder(nil), s.reminders...)
}

func (s *Store) AllCancellations() []domain.BookingCancellation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BookingCancellation(nil), s.cancellations...)
}

func (s *Store) AllPayments() []domain.BookingPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BookingPayment(nil), s.payments...)
}

func (s *Store) Provider(id int64) domain.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providers[id]
}

// Providers implements the provider repository
type Providers struct{ s *Store }

func (r *Providers) GetByID(ctx context.Context, id int64) (*domain.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.providers[id]
	if !ok {
		return nil, providerRepo.ErrProviderNotFound
	}
	return &p, nil
}

func (r *Providers) GetService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[serviceID]
	if !ok || svc.ProviderID != providerID {
		return nil, providerRepo.ErrServiceNotFound
	}
	return &svc, nil
}

func (r *Providers) UpdateOperatingHours(ctx context.Context, providerID int64, hours domain.OperatingHours) error {
	if err := hours.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.providers[providerID]
	if !ok {
		return providerRepo.ErrProviderNotFound
	}
	p.OperatingHours = hours
	r.s.providers[providerID] = p
	return nil
}

func (r *Providers) IncrementTotalBookings(ctx context.Context, providerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.providers[providerID]
	if !ok {
		return providerRepo.ErrProviderNotFound
	}
	p.TotalBookings++
	r.s.providers[providerID] = p
	return nil
}

// Rules implements the availability rule repository
type Rules struct{ s *Store }

func (r *Rules) FindActiveRules(ctx context.Context, providerID int64, weekday domain.Weekday) ([]*domain.AvailabilityRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.AvailabilityRule, 0)
	for _, rule := range r.s.rules {
		if rule.ProviderID == providerID && rule.Weekday == weekday && rule.IsActive {
			rule := rule
			result = append(result, &rule)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime.IsBefore(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Bookings implements the booking repository
type Bookings struct{ s *Store }

func (r *Bookings) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b.ID = r.s.id()
	if b.PublicID == uuid.Nil {
		b.PublicID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.s.bookings = append(r.s.bookings, *b)
	return b, nil
}

func (r *Bookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.find(func(b domain.Booking) bool { return b.ID == id })
}

func (r *Bookings) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Booking, error) {
	return r.find(func(b domain.Booking) bool { return b.PublicID == publicID })
}

func (r *Bookings) find(match func(domain.Booking) bool) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if match(b) {
			b := b
			return &b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (r *Bookings) GetByUserID(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	return r.list(func(b domain.Booking) bool {
		return b.UserID == filter.UserID && (filter.Status == nil || b.Status == *filter.Status)
	}), nil
}

func (r *Bookings) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	return r.list(func(b domain.Booking) bool {
		return b.ProviderID == filter.ProviderID &&
			(filter.Status == nil || b.Status == *filter.Status) &&
			(filter.Date == nil || domain.IsSameDay(b.BookingDate, *filter.Date))
	}), nil
}

func (r *Bookings) list(match func(domain.Booking) bool) []*domain.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.Booking, 0)
	for _, b := range r.s.bookings {
		if match(b) {
			b := b
			result = append(result, &b)
		}
	}
	return result
}

func (r *Bookings) ActiveParticipants(ctx context.Context, key domain.SlotKey, excludeID *int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, b := range r.s.bookings {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.ProviderID == key.ProviderID && b.ServiceID == key.ServiceID &&
			domain.IsSameDay(b.BookingDate, key.Date) && b.BookingTime == key.Time && b.Status.IsActive() {
			total += b.Participants
		}
	}
	return total, nil
}

func (r *Bookings) Cancel(ctx context.Context, id int64, cancelledBy *int64, reason string, at time.Time) error {
	return r.transition(id, func(b *domain.Booking) {
		b.Status = domain.StatusCancelled
		b.CancellationReason = &reason
		b.CancelledBy = cancelledBy
		b.CancelledAt = &at
	})
}

func (r *Bookings) MarkRescheduled(ctx context.Context, id int64) error {
	return r.transition(id, func(b *domain.Booking) {
		b.Status = domain.StatusRescheduled
	})
}

func (r *Bookings) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) error {
	return r.transition(id, func(b *domain.Booking) {
		b.Status = status
		if status == domain.StatusConfirmed && b.ConfirmedAt == nil {
			b.ConfirmedAt = &at
		}
	})
}

func (r *Bookings) SettlePayment(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, at time.Time) error {
	return r.transition(id, func(b *domain.Booking) {
		b.Status = domain.StatusConfirmed
		b.PaymentStatus = paymentStatus
		if b.ConfirmedAt == nil {
			b.ConfirmedAt = &at
		}
	})
}

func (r *Bookings) transition(id int64, apply func(b *domain.Booking)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.bookings {
		if r.s.bookings[i].ID != id {
			continue
		}
		if !r.s.bookings[i].Status.IsActive() {
			return bookingRepo.ErrIllegalTransition
		}
		apply(&r.s.bookings[i])
		return nil
	}
	return bookingRepo.ErrIllegalTransition
}

// Cancellations implements the cancellation repository
type Cancellations struct{ s *Store }

func (r *Cancellations) Create(ctx context.Context, c *domain.BookingCancellation) (*domain.BookingCancellation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	r.s.cancellations = append(r.s.cancellations, *c)
	return c, nil
}

func (r *Cancellations) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingCancellation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cancellations {
		if c.BookingID == bookingID {
			c := c
			return &c, nil
		}
	}
	return nil, cancellationRepo.ErrCancellationNotFound
}

// Reminders implements the reminder repository
type Reminders struct{ s *Store }

func (r *Reminders) CreateBatch(ctx context.Context, reminders []*domain.BookingReminder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rem := range reminders {
		rem.ID = r.s.id()
		rem.CreatedAt = time.Now()
		r.s.reminders = append(r.s.reminders, *rem)
	}
	return nil
}

func (r *Reminders) CancelPending(ctx context.Context, bookingID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.reminders {
		if r.s.reminders[i].BookingID == bookingID && r.s.reminders[i].Status == domain.ReminderStatusPending {
			r.s.reminders[i].Status = domain.ReminderStatusCancelled
			n++
		}
	}
	return n, nil
}

func (r *Reminders) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.BookingReminder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.BookingReminder, 0)
	for _, rem := range r.s.reminders {
		if len(result) == limit {
			break
		}
		if rem.IsDue(now) {
			rem := rem
			result = append(result, &rem)
		}
	}
	return result, nil
}

func (r *Reminders) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.finish(id, func(rem *domain.BookingReminder) {
		rem.Status = domain.ReminderStatusSent
		rem.SentAt = &at
	})
}

func (r *Reminders) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.finish(id, func(rem *domain.BookingReminder) {
		rem.Status = domain.ReminderStatusFailed
		rem.ErrorMessage = &reason
	})
}

func (r *Reminders) finish(id int64, apply func(rem *domain.BookingReminder)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.reminders {
		if r.s.reminders[i].ID == id && r.s.reminders[i].Status == domain.ReminderStatusPending {
			apply(&r.s.reminders[i])
			return nil
		}
	}
	return reminderRepo.ErrReminderNotFound
}

// Payments implements the payment repository
type Payments struct{ s *Store }

func (r *Payments) Create(ctx context.Context, p *domain.BookingPayment) (*domain.BookingPayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.payments = append(r.s.payments, *p)
	return p, nil
}

func (r *Payments) HasOpen(ctx context.Context, bookingID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.BookingID == bookingID && p.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *Payments) UpdateResult(ctx context.Context, p *domain.BookingPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.payments {
		if r.s.payments[i].ID == p.ID {
			r.s.payments[i].Status = p.Status
			r.s.payments[i].GatewayTransactionID = p.GatewayTransactionID
			r.s.payments[i].GatewayResponse = p.GatewayResponse
			r.s.payments[i].ProcessedAt = p.ProcessedAt
			r.s.payments[i].FailedReason = p.FailedReason
			return nil
		}
	}
	return paymentRepo.ErrPaymentNotFound
}
