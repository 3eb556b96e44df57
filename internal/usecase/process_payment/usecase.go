package process_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-WellnessBooking/internal/infra/storage/payment"
	"github.com/m04kA/SMC-WellnessBooking/internal/integrations/gateways"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

// UseCase use case оплаты бронирования.
// Попытка создается в статусе processing под блокировкой строки бронирования,
// затем обращение к шлюзу вне транзакции. Пока у бронирования есть открытая
// попытка, новая не создается. Ошибка шлюза записывается в платеж и не возвращается наружу.
type UseCase struct {
	bookingRepo    BookingRepository
	paymentRepo    PaymentRepository
	gateways       GatewayRegistry
	txManager      TransactionManager
	commissionRate decimal.Decimal
	metrics        Metrics
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	gateways GatewayRegistry,
	txManager TransactionManager,
	commissionRate decimal.Decimal,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		paymentRepo:    paymentRepo,
		gateways:       gateways,
		txManager:      txManager,
		commissionRate: commissionRate,
		metrics:        metrics,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет оплату
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ProcessPayment: booking=%s, user=%d, method=%s", req.PublicID, req.UserID, req.Method)

	// 1. Валидация входных данных
	method, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("ProcessPayment: validation failed: %v", err)
		return nil, err
	}

	var (
		booking *domain.Booking
		payment *domain.BookingPayment
	)

	// 2. Проверки бронирования и создание попытки (processing).
	// GetByPublicID в транзакции берет FOR UPDATE, параллельные попытки ждут коммита.
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.GetByPublicID(txCtx, req.PublicID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		if err := validatePayable(b, req.UserID); err != nil {
			return err
		}

		open, err := uc.paymentRepo.HasOpen(txCtx, b.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to check open payments: %w", ErrInternal, err)
		}
		if open {
			return ErrPaymentInProgress
		}

		attempt := domain.NewPayment(b.ID, method, b.TotalAmount, b.Currency, uc.commissionRate)
		attempt.Status = domain.PaymentStateProcessing

		created, err := uc.paymentRepo.Create(txCtx, attempt)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrOpenPaymentExists) {
				return ErrPaymentInProgress
			}
			return fmt.Errorf("%w: failed to create payment: %w", ErrInternal, err)
		}

		booking = b
		payment = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("ProcessPayment: booking=%s: %v", req.PublicID, err)
		} else {
			uc.logger.Warn("ProcessPayment: booking=%s, user=%d: %v", req.PublicID, req.UserID, err)
		}
		return nil, err
	}

	// 3. Шлюз для способа оплаты
	gateway, ok := uc.gateways.Gateway(method)
	if !ok {
		uc.logger.Warn("ProcessPayment: no gateway for method=%s, payment id=%d", method, payment.ID)
		return uc.fail(ctx, booking, payment, UnsupportedMethodReason)
	}

	// 4. Обращение к шлюзу (вне транзакции, паника перехватывается)
	result, err := gateways.SafeCharge(ctx, gateway, payment, req.Data)
	if err != nil {
		uc.logger.Warn("ProcessPayment: gateway %s failed for payment id=%d: %v", method, payment.ID, err)
		return uc.fail(ctx, booking, payment, err.Error())
	}

	// 5. Фиксируем результат платежа и состояние бронирования вместе
	now := uc.timeProvider.Now()
	payment.Status = result.Status
	payment.GatewayTransactionID = result.TransactionID
	payment.GatewayResponse = result.Response

	bookingPaymentStatus := domain.PaymentStatusPending
	if result.Status == domain.PaymentStateCompleted {
		payment.ProcessedAt = ptr.Ptr(now)
		bookingPaymentStatus = domain.PaymentStatusPaid
	}

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.paymentRepo.UpdateResult(txCtx, payment); err != nil {
			return fmt.Errorf("%w: failed to update payment: %w", ErrInternal, err)
		}
		if err := uc.bookingRepo.SettlePayment(txCtx, booking.ID, bookingPaymentStatus, now); err != nil {
			if errors.Is(err, bookingRepo.ErrIllegalTransition) {
				return ErrCannotPay
			}
			return fmt.Errorf("%w: failed to settle booking: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("ProcessPayment: payment id=%d (transaction %s) not settled: %v",
			payment.ID, ptr.Deref(payment.GatewayTransactionID, "-"), err)
		return nil, err
	}

	uc.metrics.IncPayment(string(method), string(payment.Status))
	uc.logger.Info("ProcessPayment: payment id=%d for booking id=%d is %s", payment.ID, booking.ID, payment.Status)

	booking.Status = domain.StatusConfirmed
	booking.PaymentStatus = bookingPaymentStatus
	return toResponse(true, booking, payment), nil
}

// fail записывает отказ в платеж. Бронирование не меняется, клиент может повторить оплату.
func (uc *UseCase) fail(ctx context.Context, booking *domain.Booking, payment *domain.BookingPayment, reason string) (*Response, error) {
	payment.Status = domain.PaymentStateFailed
	payment.FailedReason = ptr.Ptr(reason)

	if err := uc.paymentRepo.UpdateResult(ctx, payment); err != nil {
		uc.logger.Error("ProcessPayment: failed to record failure of payment id=%d: %v", payment.ID, err)
		return nil, fmt.Errorf("%w: failed to update payment: %w", ErrInternal, err)
	}

	uc.metrics.IncPayment(string(payment.Method), string(payment.Status))
	return toResponse(false, booking, payment), nil
}

func toResponse(success bool, b *domain.Booking, p *domain.BookingPayment) *Response {
	return &Response{
		Success:              success,
		PaymentID:            p.ID,
		BookingPublicID:      b.PublicID,
		Method:               string(p.Method),
		Amount:               p.Amount,
		Currency:             p.Currency,
		Status:               string(p.Status),
		GatewayTransactionID: p.GatewayTransactionID,
		PlatformCommission:   p.PlatformCommission,
		ProviderAmount:       p.ProviderAmount,
		ProcessedAt:          p.ProcessedAt,
		FailedReason:         p.FailedReason,
		BookingStatus:        string(b.Status),
		BookingPaymentStatus: string(b.PaymentStatus),
	}
}
