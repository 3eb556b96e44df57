package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
)

// Repository репозиторий запланированных напоминаний
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch вставляет напоминания одним запросом
func (r *Repository) CreateBatch(ctx context.Context, reminders []*domain.BookingReminder) error {
	if len(reminders) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_reminders").
		Columns(
			"booking_id",
			"reminder_type",
			"delivery_method",
			"scheduled_for",
			"subject",
			"message",
			"status",
		).
		Suffix("RETURNING id, created_at")

	for _, rem := range reminders {
		insertBuilder = insertBuilder.Values(
			rem.BookingID,
			rem.Type,
			rem.DeliveryMethod,
			rem.ScheduledFor,
			rem.Subject,
			rem.Message,
			rem.Status,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	// PostgreSQL возвращает RETURNING в порядке VALUES
	for i := 0; rows.Next() && i < len(reminders); i++ {
		var createdAt sql.NullTime
		if err := rows.Scan(&reminders[i].ID, &createdAt); err != nil {
			return fmt.Errorf("%w: CreateBatch - scan id: %w", ErrScanRow, err)
		}
		reminders[i].CreatedAt = createdAt.Time
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: CreateBatch - rows error: %w", ErrScanRow, err)
	}

	return nil
}

// CancelPending отменяет все еще не отправленные напоминания бронирования
func (r *Repository) CancelPending(ctx context.Context, bookingID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_reminders").
		Set("status", domain.ReminderStatusCancelled).
		Where(squirrel.Eq{"booking_id": bookingID, "status": string(domain.ReminderStatusPending)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CancelPending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPending - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPending - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// ListDue возвращает pending напоминания с scheduled_for <= now.
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы несколько
// экземпляров сервиса не отправили одно напоминание дважды.
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.BookingReminder, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"booking_id",
		"reminder_type",
		"delivery_method",
		"scheduled_for",
		"subject",
		"message",
		"status",
		"sent_at",
		"error_message",
		"created_at",
	).
		From("booking_reminders").
		Where(squirrel.Eq{"status": string(domain.ReminderStatusPending)}).
		Where(squirrel.LtOrEq{"scheduled_for": now}).
		OrderBy("scheduled_for ASC", "id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	reminders := make([]*domain.BookingReminder, 0)
	for rows.Next() {
		var rem domain.BookingReminder
		var createdAt sql.NullTime

		err := rows.Scan(
			&rem.ID,
			&rem.BookingID,
			&rem.Type,
			&rem.DeliveryMethod,
			&rem.ScheduledFor,
			&rem.Subject,
			&rem.Message,
			&rem.Status,
			&rem.SentAt,
			&rem.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListDue - scan reminder: %w", ErrScanRow, err)
		}
		rem.CreatedAt = createdAt.Time
		reminders = append(reminders, &rem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDue - rows error: %w", ErrScanRow, err)
	}

	return reminders, nil
}

// MarkSent отмечает напоминание отправленным
func (r *Repository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.finish(ctx, "MarkSent", id, map[string]interface{}{
		"status":  domain.ReminderStatusSent,
		"sent_at": at,
	})
}

// MarkFailed сохраняет причину неудачной отправки
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.finish(ctx, "MarkFailed", id, map[string]interface{}{
		"status":        domain.ReminderStatusFailed,
		"error_message": reason,
	})
}

func (r *Repository) finish(ctx context.Context, op string, id int64, set map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_reminders").
		SetMap(set).
		Where(squirrel.Eq{"id": id, "status": string(domain.ReminderStatusPending)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrReminderNotFound
	}

	return nil
}
