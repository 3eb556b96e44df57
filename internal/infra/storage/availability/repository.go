package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WellnessBooking/pkg/psqlbuilder"
)

// Repository репозиторий правил доступности провайдеров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindActiveRules возвращает активные правила провайдера на день недели.
// Порядок детерминирован: по времени начала, затем по ID.
// service_id = NULL означает общее правило (domain.General).
func (r *Repository) FindActiveRules(ctx context.Context, providerID int64, weekday domain.Weekday) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"service_id",
		"weekday",
		"start_time",
		"end_time",
		"max_bookings",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("availability_rules").
		Where(squirrel.Eq{
			"provider_id": providerID,
			"weekday":     int(weekday),
			"is_active":   true,
		}).
		OrderBy("start_time ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveRules - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.AvailabilityRule, 0)
	for rows.Next() {
		var rule domain.AvailabilityRule
		var serviceID sql.NullInt64
		var day int
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&rule.ID,
			&rule.ProviderID,
			&serviceID,
			&day,
			&rule.StartTime,
			&rule.EndTime,
			&rule.MaxBookings,
			&rule.IsActive,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: FindActiveRules - scan rule: %w", ErrScanRow, err)
		}

		rule.Weekday = domain.Weekday(day)
		if serviceID.Valid {
			rule.Scope = domain.ServiceSpecific{ServiceID: serviceID.Int64}
		} else {
			rule.Scope = domain.General{}
		}
		rule.CreatedAt = createdAt.Time
		rule.UpdatedAt = updatedAt.Time

		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindActiveRules - rows error: %w", ErrScanRow, err)
	}

	return rules, nil
}
