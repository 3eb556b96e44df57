package provider

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
)

// Repository репозиторий провайдеров и их услуг
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория провайдеров
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает провайдера по ID.
// Часы работы валидируются при чтении jsonb (domain.OperatingHours.Scan).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Provider, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"owner_user_id",
		"business_name",
		"category",
		"status",
		"operating_hours",
		"accepts_online_bookings",
		"is_verified",
		"total_bookings",
		"average_rating",
		"created_at",
		"updated_at",
	).
		From("providers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Provider
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.BusinessName,
		&p.Category,
		&p.Status,
		&p.OperatingHours,
		&p.AcceptsOnlineBookings,
		&p.IsVerified,
		&p.TotalBookings,
		&p.AverageRating,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan provider: %w", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// GetService получает услугу, принадлежащую провайдеру
func (r *Repository) GetService(ctx context.Context, providerID, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"name",
		"price",
		"currency",
		"duration_minutes",
		"max_participants",
		"minimum_notice_hours",
		"is_active",
		"is_bookable",
		"created_at",
		"updated_at",
	).
		From("provider_services").
		Where(squirrel.Eq{"id": serviceID, "provider_id": providerID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ProviderID,
		&s.Name,
		&s.Price,
		&s.Currency,
		&s.DurationMinutes,
		&s.MaxParticipants,
		&s.MinimumNoticeHours,
		&s.IsActive,
		&s.IsBookable,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// UpdateOperatingHours сохраняет часы работы (значение валидируется до записи)
func (r *Repository) UpdateOperatingHours(ctx context.Context, providerID int64, hours domain.OperatingHours) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if err := hours.Validate(); err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update("providers").
		Set("operating_hours", hours).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": providerID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateOperatingHours - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateOperatingHours - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateOperatingHours - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}

// IncrementTotalBookings атомарно увеличивает счетчик бронирований
func (r *Repository) IncrementTotalBookings(ctx context.Context, providerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("providers").
		Set("total_bookings", squirrel.Expr("total_bookings + 1")).
		Where(squirrel.Eq{"id": providerID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementTotalBookings - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementTotalBookings - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementTotalBookings - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrProviderNotFound
	}

	return nil
}
