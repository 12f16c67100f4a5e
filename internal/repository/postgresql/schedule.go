package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `
	id, tenant_id, name, entry_minute, exit_minute,
	lunch_out_minute, lunch_return_minute, weekday_mask,
	planned_daily_minutes, is_default, created_at, updated_at
`

func scanSchedule(row pgx.Row) (schedule.ContractSchedule, error) {
	var s schedule.ContractSchedule
	var maskBits int
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Name, &s.EntryMinute, &s.ExitMinute,
		&s.LunchOutMinute, &s.LunchReturnMinute, &maskBits,
		&s.PlannedDailyMinutes, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return schedule.ContractSchedule{}, err
	}
	s.WeekdayMask = schedule.MaskFromBits(maskBits)
	return s, nil
}

// GetByID implements schedule.ScheduleRepository.
func (r *scheduleRepository) GetByID(ctx context.Context, id string, tenantID string) (schedule.ContractSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleColumns + ` FROM contract_schedules WHERE id = $1 AND tenant_id = $2`

	s, err := scanSchedule(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ContractSchedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.ContractSchedule{}, fmt.Errorf("failed to get schedule by ID: %w", err)
	}
	return s, nil
}

// GetTenantDefault implements schedule.ScheduleRepository.
func (r *scheduleRepository) GetTenantDefault(ctx context.Context, tenantID string) (schedule.ContractSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleColumns + ` FROM contract_schedules WHERE tenant_id = $1 AND is_default LIMIT 1`

	s, err := scanSchedule(q.QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ContractSchedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.ContractSchedule{}, fmt.Errorf("failed to get tenant default schedule: %w", err)
	}
	return s, nil
}
