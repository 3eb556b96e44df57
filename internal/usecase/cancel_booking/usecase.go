package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/notifications"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/refund"
)

const operation = "cancel"

// UseCase use case для отмены бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	providerRepo     ProviderRepository
	cancellationRepo CancellationRepository
	scheduler        ReminderScheduler
	txManager        TransactionManager
	policy           domain.Policy
	refundPolicy     refund.Policy
	metrics          Metrics
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	providerRepo ProviderRepository,
	cancellationRepo CancellationRepository,
	scheduler ReminderScheduler,
	txManager TransactionManager,
	policy domain.Policy,
	refundPolicy refund.Policy,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		providerRepo:     providerRepo,
		cancellationRepo: cancellationRepo,
		scheduler:        scheduler,
		txManager:        txManager,
		policy:           policy,
		refundPolicy:     refundPolicy,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute отменяет бронирование.
// Владелец бронирования отменяет как клиент, владелец провайдера как провайдер.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%s, user=%d", req.PublicID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	reason := reasonOrDefault(req.Reason)

	var response *Response

	// 2. Все изменения в одной транзакции, строка бронирования блокируется
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем бронирование (FOR UPDATE)
		booking, err := uc.bookingRepo.GetByPublicID(txCtx, req.PublicID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 2.2. Провайдер и услуга для прав доступа и текста уведомления
		provider, err := uc.providerRepo.GetByID(txCtx, booking.ProviderID)
		if err != nil {
			return fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
		}

		cancellationType, err := resolveCancellationType(booking, provider, req.UserID)
		if err != nil {
			return err
		}

		// 2.3. Проверка допустимости отмены
		if !uc.policy.CanCancel(*booking, now) {
			uc.logger.Warn("CancelBooking: booking id=%d cannot be cancelled, status=%s, date=%s %s",
				booking.ID, booking.Status, booking.BookingDate.Format(domain.DateFormat), booking.BookingTime)
			return ErrCannotCancel
		}

		service, err := uc.providerRepo.GetService(txCtx, booking.ProviderID, booking.ServiceID)
		if err != nil {
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		// 2.4. Возврат считается на момент отмены
		startsAt, err := booking.StartsAt(uc.policy.Location)
		if err != nil {
			return fmt.Errorf("%w: invalid booking time: %v", ErrInternal, err)
		}
		refundResult := uc.refundPolicy.Calculate(booking.TotalAmount, startsAt, now)

		// 2.5. Переводим бронирование в cancelled (только из активных статусов)
		if err := uc.bookingRepo.Cancel(txCtx, booking.ID, &req.UserID, reason, now); err != nil {
			if errors.Is(err, bookingRepo.ErrIllegalTransition) {
				return ErrCannotCancel
			}
			return fmt.Errorf("%w: failed to cancel booking: %w", ErrInternal, err)
		}

		// 2.6. Запись об отмене
		cancellation, err := uc.cancellationRepo.Create(txCtx, &domain.BookingCancellation{
			BookingID:        booking.ID,
			CancellationType: cancellationType,
			CancelledBy:      &req.UserID,
			Reason:           reason,
			RefundAmount:     refundResult.Amount,
			RefundPercentage: refundResult.Percentage,
			RefundStatus:     refundResult.Status,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create cancellation: %w", ErrInternal, err)
		}

		// 2.7. Старые напоминания больше не нужны, отправляем уведомление об отмене
		if err := uc.scheduler.CancelPending(txCtx, booking.ID); err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		details := notifications.Details{ProviderName: provider.BusinessName, ServiceName: service.Name}
		if _, err := uc.scheduler.ScheduleCancellation(txCtx, booking, details, now); err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}

		response = &Response{
			PublicID:         booking.PublicID,
			Status:           string(domain.StatusCancelled),
			CancellationType: string(cancellation.CancellationType),
			RefundAmount:     cancellation.RefundAmount,
			RefundPercentage: cancellation.RefundPercentage,
			RefundStatus:     string(cancellation.RefundStatus),
			CancelledAt:      now,
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrAccessDenied), errors.Is(err, ErrCannotCancel):
			uc.logger.Warn("CancelBooking: booking=%s, user=%d: %v", req.PublicID, req.UserID, err)
			uc.metrics.IncBooking(operation, "rejected")
		default:
			uc.logger.Error("CancelBooking: booking=%s, user=%d: %v", req.PublicID, req.UserID, err)
			uc.metrics.IncBooking(operation, "failed")
		}
		return nil, err
	}

	uc.metrics.IncBooking(operation, "cancelled")
	uc.metrics.IncCancellation(response.CancellationType, response.RefundPercentage)
	uc.logger.Info("CancelBooking: booking=%s cancelled as %s, refund=%s (%d%%)",
		req.PublicID, response.CancellationType, response.RefundAmount.StringFixed(2), response.RefundPercentage)

	return response, nil
}

// resolveCancellationType определяет тип отмены по роли пользователя
func resolveCancellationType(booking *domain.Booking, provider *domain.Provider, userID int64) (domain.CancellationType, error) {
	switch {
	case booking.IsOwnedBy(userID):
		return domain.CancelledByCustomer, nil
	case provider.IsOwnedBy(userID):
		return domain.CancelledByProvider, nil
	default:
		return "", ErrAccessDenied
	}
}
