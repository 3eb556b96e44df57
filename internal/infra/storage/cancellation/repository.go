package cancellation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
)

// Repository репозиторий записей об отмене
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет запись об отмене вместе с рассчитанным возвратом
func (r *Repository) Create(ctx context.Context, c *domain.BookingCancellation) (*domain.BookingCancellation, error) {
	if !c.RefundStatus.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRefundStatus, c.RefundStatus)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_cancellations").
		Columns(
			"booking_id",
			"cancellation_type",
			"cancelled_by",
			"reason",
			"refund_amount",
			"refund_percentage",
			"refund_status",
		).
		Values(
			c.BookingID,
			c.CancellationType,
			c.CancelledBy,
			c.Reason,
			c.RefundAmount,
			c.RefundPercentage,
			c.RefundStatus,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	c.CreatedAt = createdAt.Time

	return c, nil
}

// GetByBookingID получает запись об отмене бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingCancellation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"cancellation_type",
		"cancelled_by",
		"reason",
		"refund_amount",
		"refund_percentage",
		"refund_status",
		"refund_processed_at",
		"refund_transaction_id",
		"created_at",
	).
		From("booking_cancellations").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.BookingCancellation
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.BookingID,
		&c.CancellationType,
		&c.CancelledBy,
		&c.Reason,
		&c.RefundAmount,
		&c.RefundPercentage,
		&c.RefundStatus,
		&c.RefundProcessedAt,
		&c.RefundTransactionID,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCancellationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan cancellation: %w", ErrScanRow, err)
	}
	c.CreatedAt = createdAt.Time

	return &c, nil
}
