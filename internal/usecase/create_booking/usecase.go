package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	providerRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/provider"
	userClient "github.com/m04kA/SMC-WellnessBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
)

const operation = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	providerRepo ProviderRepository
	bookingRepo  BookingRepository
	availability AvailabilityChecker
	scheduler    ReminderScheduler
	userClient   UserServiceClient
	txManager    TransactionManager
	metrics      Metrics
	currency     string
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// currency используется, если у услуги не указана валюта.
func NewUseCase(
	providerRepo ProviderRepository,
	bookingRepo BookingRepository,
	availability AvailabilityChecker,
	scheduler ReminderScheduler,
	userClient UserServiceClient,
	txManager TransactionManager,
	metrics Metrics,
	currency string,
	logger Logger,
) *UseCase {
	return &UseCase{
		providerRepo: providerRepo,
		bookingRepo:  bookingRepo,
		availability: availability,
		scheduler:    scheduler,
		userClient:   userClient,
		txManager:    txManager,
		metrics:      metrics,
		currency:     currency,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Проверка доступности повторяется внутри сериализуемой транзакции вместе со вставкой.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, provider=%d, service=%d, date=%s, time=%s, participants=%d",
		req.UserID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.Time, req.Participants)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем провайдера
	provider, err := uc.providerRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrProviderNotFound) {
			uc.logger.Warn("CreateBooking: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateBooking: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 3. Получаем услугу
	service, err := uc.providerRepo.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found at provider id=%d", req.ServiceID, req.ProviderID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Провайдер и услуга принимают бронирования
	if err := validateBookable(provider, service, req.Participants); err != nil {
		uc.logger.Warn("CreateBooking: provider id=%d, service id=%d not bookable: %v", provider.ID, service.ID, err)
		return nil, err
	}

	// 5. Контактные данные: недостающие поля берем из профиля
	var profile *userClient.Profile
	if needsProfile(req) {
		profile, err = uc.userClient.GetProfileWithGracefulDegradation(ctx, req.UserID)
		if err != nil {
			uc.logger.Warn("CreateBooking: profile of user id=%d unavailable: %v", req.UserID, err)
		}
	}

	contact, err := resolveContact(req, profile)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	details := notifications.Details{ProviderName: provider.BusinessName, ServiceName: service.Name}

	var (
		result    *domain.Booking
		reminders []*domain.BookingReminder
	)

	// 6. Проверка слота и вставка в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Повторная проверка доступности (занятость читается с блокировкой)
		verdict, err := uc.availability.Check(txCtx, availability.Request{
			Provider:     provider,
			Service:      service,
			Date:         req.Date,
			Time:         req.Time,
			Participants: req.Participants,
		}, now)
		if err != nil {
			return fmt.Errorf("%w: failed to check availability: %w", ErrInternal, err)
		}
		if !verdict.Available {
			return verdict.Err()
		}

		// 6.2. Создаем бронирование со снимком цены и контактов
		booking := &domain.Booking{
			PublicID:          uuid.New(),
			ConfirmationToken: uuid.New(),
			UserID:            req.UserID,
			ProviderID:        provider.ID,
			ServiceID:         service.ID,
			BookingDate:       domain.CalendarDate(req.Date, time.UTC),
			BookingTime:       req.Time,
			DurationMinutes:   service.DurationMinutes,
			Participants:      req.Participants,
			Status:            domain.StatusPending,
			PaymentStatus:     domain.PaymentStatusPending,
			ServicePrice:      service.Price,
			TotalAmount:       domain.TotalAmountFor(service.Price, req.Participants),
			Currency:          uc.currencyOf(service),
			CustomerName:      contact.name,
			CustomerPhone:     contact.phone,
			CustomerEmail:     contact.email,
			SpecialRequests:   req.SpecialRequests,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 6.3. Счетчик бронирований провайдера (атомарный инкремент)
		if err := uc.providerRepo.IncrementTotalBookings(txCtx, provider.ID); err != nil {
			return fmt.Errorf("%w: failed to increment total bookings: %w", ErrInternal, err)
		}

		// 6.4. Напоминания
		scheduled, err := uc.scheduler.ScheduleBooking(txCtx, created, details, now)
		if err != nil {
			return fmt.Errorf("%w: failed to schedule reminders: %w", ErrInternal, err)
		}

		result = created
		reminders = scheduled
		return nil
	})

	if err != nil {
		var rejection *availability.RejectionError
		if errors.As(err, &rejection) {
			uc.logger.Warn("CreateBooking: slot rejected for user=%d: %s", req.UserID, rejection.Reason)
			uc.metrics.IncRejection(string(rejection.Kind))
			uc.metrics.IncBooking(operation, "rejected")
			return nil, rejection
		}
		uc.logger.Error("CreateBooking: transaction failed for user=%d: %v", req.UserID, err)
		uc.metrics.IncBooking(operation, "failed")
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.metrics.IncBooking(operation, "created")
	uc.logger.Info("CreateBooking: successfully created booking id=%d public_id=%s, %d reminders scheduled",
		result.ID, result.PublicID, len(reminders))

	return toResponse(result, len(reminders)), nil
}

func (uc *UseCase) currencyOf(service *domain.Service) string {
	if service.Currency != "" {
		return service.Currency
	}
	if uc.currency != "" {
		return uc.currency
	}
	return domain.DefaultCurrency
}

func toResponse(b *domain.Booking, reminders int) *Response {
	return &Response{
		ID:                b.ID,
		PublicID:          b.PublicID,
		ConfirmationToken: b.ConfirmationToken,
		UserID:            b.UserID,
		ProviderID:        b.ProviderID,
		ServiceID:         b.ServiceID,
		BookingDate:       b.BookingDate,
		BookingTime:       b.BookingTime,
		DurationMinutes:   b.DurationMinutes,
		Participants:      b.Participants,
		Status:            string(b.Status),
		PaymentStatus:     string(b.PaymentStatus),
		ServicePrice:      b.ServicePrice,
		TotalAmount:       b.TotalAmount,
		Currency:          b.Currency,
		CustomerName:      b.CustomerName,
		CustomerPhone:     b.CustomerPhone,
		CustomerEmail:     b.CustomerEmail,
		SpecialRequests:   b.SpecialRequests,
		Reminders:         reminders,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}
