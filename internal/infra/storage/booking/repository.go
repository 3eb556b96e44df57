package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
)

const tableName = "bookings"

var columns = []string{
	"id",
	"public_id",
	"confirmation_token",
	"user_id",
	"provider_id",
	"service_id",
	"booking_date",
	"booking_time",
	"duration_minutes",
	"participants",
	"status",
	"payment_status",
	"service_price",
	"total_amount",
	"currency",
	"customer_name",
	"customer_phone",
	"customer_email",
	"special_requests",
	"provider_notes",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"confirmed_at",
	"original_booking_id",
	"reschedule_count",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте есть транзакция, запрос выполняется в ней.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"public_id",
			"confirmation_token",
			"user_id",
			"provider_id",
			"service_id",
			"booking_date",
			"booking_time",
			"duration_minutes",
			"participants",
			"status",
			"payment_status",
			"service_price",
			"total_amount",
			"currency",
			"customer_name",
			"customer_phone",
			"customer_email",
			"special_requests",
			"original_booking_id",
			"reschedule_count",
		).
		Values(
			booking.PublicID,
			booking.ConfirmationToken,
			booking.UserID,
			booking.ProviderID,
			booking.ServiceID,
			booking.BookingDate.Format(domain.DateFormat),
			booking.BookingTime,
			booking.DurationMinutes,
			booking.Participants,
			booking.Status,
			booking.PaymentStatus,
			booking.ServicePrice,
			booking.TotalAmount,
			booking.Currency,
			booking.CustomerName,
			booking.CustomerPhone,
			booking.CustomerEmail,
			booking.SpecialRequests,
			booking.OriginalBookingID,
			booking.RescheduleCount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	// %w сохраняет *pq.Error в цепочке, txmanager по нему решает о повторе
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByPublicID получает бронирование по публичному идентификатору
func (r *Repository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByPublicID", squirrel.Eq{"public_id": publicID.String()})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(where)

	// Внутри транзакции блокируем строку до конца изменения статуса
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, op, err)
	}

	return booking, nil
}

// GetByUserID получает бронирования пользователя, новые сначала
func (r *Repository) GetByUserID(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("booking_date DESC", "booking_time DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByProviderWithFilter получает бронирования провайдера.
// Для конкретной даты сортировка по времени, иначе новые сначала.
func (r *Repository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"provider_id": filter.ProviderID})

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"booking_date": filter.Date.Format(domain.DateFormat)}).
			OrderBy("booking_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "booking_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ActiveParticipants суммирует участников активных бронирований слота.
// В транзакции строки блокируются FOR UPDATE до коммита.
func (r *Repository) ActiveParticipants(ctx context.Context, key domain.SlotKey, excludeID *int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("participants").
		From(tableName).
		Where(squirrel.Eq{
			"provider_id":  key.ProviderID,
			"service_id":   key.ServiceID,
			"booking_date": key.Date.Format(domain.DateFormat),
			"booking_time": key.Time,
			"status":       statusStrings(domain.ActiveStatuses),
		})

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ActiveParticipants - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ActiveParticipants - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var participants int
		if err := rows.Scan(&participants); err != nil {
			return 0, fmt.Errorf("%w: ActiveParticipants - scan participants: %w", ErrScanRow, err)
		}
		total += participants
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: ActiveParticipants - rows error: %w", ErrScanRow, err)
	}

	return total, nil
}

// Cancel переводит активное бронирование в cancelled
func (r *Repository) Cancel(ctx context.Context, id int64, cancelledBy *int64, reason string, at time.Time) error {
	return r.transition(ctx, "Cancel", id, map[string]interface{}{
		"status":              domain.StatusCancelled,
		"cancellation_reason": reason,
		"cancelled_by":        cancelledBy,
		"cancelled_at":        at,
	})
}

// MarkRescheduled переводит активное бронирование в rescheduled
func (r *Repository) MarkRescheduled(ctx context.Context, id int64) error {
	return r.transition(ctx, "MarkRescheduled", id, map[string]interface{}{
		"status": domain.StatusRescheduled,
	})
}

// UpdateStatus переводит активное бронирование в новый статус
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) error {
	set := map[string]interface{}{"status": status}
	if status == domain.StatusConfirmed {
		set["confirmed_at"] = squirrel.Expr("COALESCE(confirmed_at, ?)", at)
	}
	return r.transition(ctx, "UpdateStatus", id, set)
}

// SettlePayment подтверждает активное бронирование и проставляет статус оплаты
func (r *Repository) SettlePayment(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, at time.Time) error {
	return r.transition(ctx, "SettlePayment", id, map[string]interface{}{
		"status":         domain.StatusConfirmed,
		"payment_status": paymentStatus,
		"confirmed_at":   squirrel.Expr("COALESCE(confirmed_at, ?)", at),
	})
}

// transition обновляет только бронирование в активном статусе.
// 0 затронутых строк означает, что бронирование уже терминальное (или не существует).
func (r *Repository) transition(ctx context.Context, op string, id int64, set map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		SetMap(set).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": statusStrings(domain.ActiveStatuses)}).
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
		return ErrIllegalTransition
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.PublicID,
		&booking.ConfirmationToken,
		&booking.UserID,
		&booking.ProviderID,
		&booking.ServiceID,
		&booking.BookingDate,
		&booking.BookingTime,
		&booking.DurationMinutes,
		&booking.Participants,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.ServicePrice,
		&booking.TotalAmount,
		&booking.Currency,
		&booking.CustomerName,
		&booking.CustomerPhone,
		&booking.CustomerEmail,
		&booking.SpecialRequests,
		&booking.ProviderNotes,
		&booking.CancellationReason,
		&booking.CancelledBy,
		&booking.CancelledAt,
		&booking.ConfirmedAt,
		&booking.OriginalBookingID,
		&booking.RescheduleCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
