package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
)

// код PostgreSQL для нарушения уникального индекса
const codeUniqueViolation = "23505"

// openStatuses попытки, которые держат бронирование
var openStatuses = []string{
	string(domain.PaymentStatePending),
	string(domain.PaymentStateProcessing),
	string(domain.PaymentStateCompleted),
}

// Repository репозиторий платежей по бронированиям
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет платеж в статусе pending вместе с разделением комиссии
func (r *Repository) Create(ctx context.Context, p *domain.BookingPayment) (*domain.BookingPayment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_payments").
		Columns(
			"booking_id",
			"payment_method",
			"amount",
			"currency",
			"status",
			"gateway_fee",
			"platform_commission",
			"provider_amount",
		).
		Values(
			p.BookingID,
			p.Method,
			p.Amount,
			p.Currency,
			p.Status,
			p.GatewayFee,
			p.PlatformCommission,
			p.ProviderAmount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &createdAt, &updatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
			return nil, fmt.Errorf("%w: booking_id=%d", ErrOpenPaymentExists, p.BookingID)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// HasOpen проверяет, есть ли у бронирования попытка в pending, processing или completed
func (r *Repository) HasOpen(ctx context.Context, bookingID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("booking_payments").
		Where(squirrel.Eq{
			"booking_id": bookingID,
			"status":     openStatuses,
		}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasOpen - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasOpen - execute query: %w", ErrExecQuery, err)
	}

	return true, nil
}

// UpdateResult сохраняет результат обращения к платежному шлюзу.
// Суммы и комиссия не меняются.
func (r *Repository) UpdateResult(ctx context.Context, p *domain.BookingPayment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var response interface{}
	if p.GatewayResponse != nil {
		raw, err := json.Marshal(p.GatewayResponse)
		if err != nil {
			return fmt.Errorf("%w: UpdateResult - marshal gateway response: %v", ErrBuildQuery, err)
		}
		response = string(raw)
	}

	query, args, err := psqlbuilder.Update("booking_payments").
		Set("status", p.Status).
		Set("gateway_transaction_id", p.GatewayTransactionID).
		Set("gateway_response", response).
		Set("processed_at", p.ProcessedAt).
		Set("failed_reason", p.FailedReason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateResult - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateResult - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateResult - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}
