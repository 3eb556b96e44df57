package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

const operation = "reschedule"

// UseCase use case для переноса бронирования.
// Перенос не меняет строку: старая получает статус rescheduled, создается новая.
type UseCase struct {
	bookingRepo  BookingRepository
	providerRepo ProviderRepository
	availability AvailabilityChecker
	scheduler    ReminderScheduler
	txManager    TransactionManager
	policy       domain.Policy
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	providerRepo ProviderRepository,
	availability AvailabilityChecker,
	scheduler ReminderScheduler,
	txManager TransactionManager,
	policy domain.Policy,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		providerRepo: providerRepo,
		availability: availability,
		scheduler:    scheduler,
		txManager:    txManager,
		policy:       policy,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет перенос
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%s, user=%d, new date=%s, new time=%s",
		req.PublicID, req.UserID, req.NewDate.Format(domain.DateFormat), req.NewTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		original *domain.Booking
		result   *domain.Booking
	)

	// 2. Проверка нового слота, закрытие старой строки и вставка новой в одной транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем бронирование (FOR UPDATE)
		booking, err := uc.bookingRepo.GetByPublicID(txCtx, req.PublicID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// 2.2. Переносить может только клиент
		if !booking.IsOwnedBy(req.UserID) {
			return ErrAccessDenied
		}

		// 2.3. Статус, лимит переносов и 24-часовой буфер
		if !uc.policy.CanReschedule(*booking, now) {
			uc.logger.Warn("RescheduleBooking: booking id=%d cannot be rescheduled, status=%s, count=%d",
				booking.ID, booking.Status, booking.RescheduleCount)
			return ErrCannotReschedule
		}

		provider, err := uc.providerRepo.GetByID(txCtx, booking.ProviderID)
		if err != nil {
			return fmt.Errorf("%w: failed to get provider: %w", ErrInternal, err)
		}
		service, err := uc.providerRepo.GetService(txCtx, booking.ProviderID, booking.ServiceID)
		if err != nil {
			return fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
		}

		// 2.4. Новый слот, собственные участники не учитываются
		verdict, err := uc.availability.Check(txCtx, availability.Request{
			Provider:         provider,
			Service:          service,
			Date:             req.NewDate,
			Time:             req.NewTime,
			Participants:     booking.Participants,
			ExcludeBookingID: ptr.Ptr(booking.ID),
		}, now)
		if err != nil {
			return fmt.Errorf("%w: failed to check availability: %w", ErrInternal, err)
		}
		if !verdict.Available {
			return verdict.Err()
		}

		// 2.5. Старая строка становится rescheduled (только из активных статусов)
		if err := uc.bookingRepo.MarkRescheduled(txCtx, booking.ID); err != nil {
			if errors.Is(err, bookingRepo.ErrIllegalTransition) {
				return ErrCannotReschedule
			}
			return fmt.Errorf("%w: failed to mark booking rescheduled: %w", ErrInternal, err)
		}

		// 2.6. Новая строка со ссылкой на исходную
		created, err := uc.bookingRepo.Create(txCtx, moved(booking, req))
		if err != nil {
			return fmt.Errorf("%w: failed to create rescheduled booking: %w", ErrInternal, err)
		}

		// 2.7. Напоминания старой строки отменяются, новая получает полный набор
		if err := uc.scheduler.CancelPending(txCtx, booking.ID); err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		details := notifications.Details{ProviderName: provider.BusinessName, ServiceName: service.Name}
		if _, err := uc.scheduler.ScheduleReschedule(txCtx, created, details, strings.TrimSpace(req.Reason), now); err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}

		original = booking
		result = created
		return nil
	})

	if err != nil {
		var rejection *availability.RejectionError
		switch {
		case errors.As(err, &rejection):
			uc.logger.Warn("RescheduleBooking: new slot rejected for booking=%s: %s", req.PublicID, rejection.Reason)
			uc.metrics.IncRejection(string(rejection.Kind))
			uc.metrics.IncBooking(operation, "rejected")
			return nil, rejection
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrAccessDenied), errors.Is(err, ErrCannotReschedule):
			uc.logger.Warn("RescheduleBooking: booking=%s, user=%d: %v", req.PublicID, req.UserID, err)
			uc.metrics.IncBooking(operation, "rejected")
			return nil, err
		default:
			uc.logger.Error("RescheduleBooking: booking=%s, user=%d: %v", req.PublicID, req.UserID, err)
			uc.metrics.IncBooking(operation, "failed")
			return nil, err
		}
	}

	uc.metrics.IncBooking(operation, "rescheduled")
	uc.logger.Info("RescheduleBooking: booking id=%d moved to id=%d (%s %s), reschedule count=%d",
		original.ID, result.ID, result.BookingDate.Format(domain.DateFormat), result.BookingTime, result.RescheduleCount)

	return &Response{
		ID:                result.ID,
		PublicID:          result.PublicID,
		OriginalPublicID:  original.PublicID,
		BookingDate:       result.BookingDate,
		BookingTime:       result.BookingTime,
		Participants:      result.Participants,
		Status:            string(result.Status),
		PaymentStatus:     string(result.PaymentStatus),
		TotalAmount:       result.TotalAmount,
		Currency:          result.Currency,
		RescheduleCount:   result.RescheduleCount,
		ConfirmationToken: result.ConfirmationToken,
		CreatedAt:         result.CreatedAt,
	}, nil
}

// moved копия бронирования на новый слот. Новая запись снова ждет подтверждения,
// статус оплаты, цены и контакты сохраняются.
func moved(b *domain.Booking, req *Request) *domain.Booking {
	return &domain.Booking{
		PublicID:          uuid.New(),
		ConfirmationToken: uuid.New(),
		UserID:            b.UserID,
		ProviderID:        b.ProviderID,
		ServiceID:         b.ServiceID,
		BookingDate:       domain.CalendarDate(req.NewDate, time.UTC),
		BookingTime:       req.NewTime,
		DurationMinutes:   b.DurationMinutes,
		Participants:      b.Participants,
		Status:            domain.StatusPending,
		PaymentStatus:     b.PaymentStatus,
		ServicePrice:      b.ServicePrice,
		TotalAmount:       b.TotalAmount,
		Currency:          b.Currency,
		CustomerName:      b.CustomerName,
		CustomerPhone:     b.CustomerPhone,
		CustomerEmail:     b.CustomerEmail,
		SpecialRequests:   b.SpecialRequests,
		OriginalBookingID: ptr.Ptr(b.ID),
		RescheduleCount:   b.RescheduleCount + 1,
	}
}
