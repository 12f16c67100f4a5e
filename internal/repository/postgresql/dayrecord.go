package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
)

type dayRecordRepository struct {
	db *database.DB
}

func NewDayRecordRepository(db *database.DB) dayrecord.DayRecordRepository {
	return &dayRecordRepository{db: db}
}

const dayRecordColumns = `
	id, employee_id, tenant_id, date,
	entry_minute, lunch_out_minute, lunch_return_minute, exit_minute,
	override_kind, note,
	kind, worked_minutes, overtime_minutes, premium_tier,
	tardy_entry_minutes, tardy_exit_minutes, lost_minutes,
	worked_hours, overtime_hours, tardy_hours, lost_hours,
	rule_version, version, ledger_entry_id, last_error,
	created_at, updated_at
`

func scanDayRecord(row pgx.Row) (dayrecord.DayRecord, error) {
	var d dayrecord.DayRecord
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.TenantID, &d.Date,
		&d.EntryMinute, &d.LunchOutMinute, &d.LunchReturnMinute, &d.ExitMinute,
		&d.OverrideKind, &d.Note,
		&d.Kind, &d.WorkedMinutes, &d.OvertimeMinutes, &d.PremiumTier,
		&d.TardyEntryMinutes, &d.TardyExitMinutes, &d.LostMinutes,
		&d.WorkedHours, &d.OvertimeHours, &d.TardyHours, &d.LostHours,
		&d.RuleVersion, &d.Version, &d.LedgerEntryID, &d.LastError,
		&d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// GetByEmployeeAndDate implements dayrecord.DayRecordRepository.
func (r *dayRecordRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, tenantID string) (*dayrecord.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dayRecordColumns + `
		FROM day_records
		WHERE employee_id = $1 AND date = $2 AND tenant_id = $3
		LIMIT 1`

	d, err := scanDayRecord(q.QueryRow(ctx, query, employeeID, date, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get day record by employee and date: %w", err)
	}
	return &d, nil
}

func scopeWhere(scope dayrecord.RecomputeScope) (string, []interface{}) {
	where := "tenant_id = $1 AND date >= $2 AND date <= $3"
	args := []interface{}{scope.TenantID, scope.From, scope.To}
	if scope.EmployeeID != nil && *scope.EmployeeID != "" {
		where += " AND employee_id = $4"
		args = append(args, *scope.EmployeeID)
	}
	return where, args
}

// CountByScope implements dayrecord.DayRecordRepository.
func (r *dayRecordRepository) CountByScope(ctx context.Context, scope dayrecord.RecomputeScope) (int, error) {
	q := GetQuerier(ctx, r.db)

	where, args := scopeWhere(scope)
	var count int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM day_records WHERE "+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count day records: %w", err)
	}
	return count, nil
}

// StreamByScope implements dayrecord.DayRecordRepository.
// Rows are consumed one at a time so the scope never sits in memory whole.
func (r *dayRecordRepository) StreamByScope(ctx context.Context, scope dayrecord.RecomputeScope, fn func(dayrecord.DayRecord) error) error {
	q := GetQuerier(ctx, r.db)

	where, args := scopeWhere(scope)
	query := `SELECT ` + dayRecordColumns + `
		FROM day_records
		WHERE ` + where + `
		ORDER BY employee_id ASC, date ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query day records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDayRecord(rows)
		if err != nil {
			return fmt.Errorf("failed to scan day record: %w", err)
		}
		if err := fn(d); err != nil {
			return err
		}
	}

	return rows.Err()
}

// UpdateDerived implements dayrecord.DayRecordRepository.
// One row, one statement: the derived-field write is all-or-nothing, raw
// punch fields and the override are never part of the SET list, and a
// rule-version downgrade is refused at the row level too.
func (r *dayRecordRepository) UpdateDerived(ctx context.Context, rec dayrecord.DayRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE day_records SET
			kind = $1,
			worked_minutes = $2,
			overtime_minutes = $3,
			premium_tier = $4,
			tardy_entry_minutes = $5,
			tardy_exit_minutes = $6,
			lost_minutes = $7,
			worked_hours = $8,
			overtime_hours = $9,
			tardy_hours = $10,
			lost_hours = $11,
			rule_version = $12,
			version = version + 1,
			ledger_entry_id = $13,
			last_error = NULL,
			updated_at = NOW()
		WHERE id = $14 AND tenant_id = $15 AND rule_version <= $12
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		rec.Kind,
		rec.WorkedMinutes,
		rec.OvertimeMinutes,
		rec.PremiumTier,
		rec.TardyEntryMinutes,
		rec.TardyExitMinutes,
		rec.LostMinutes,
		rec.WorkedHours,
		rec.OvertimeHours,
		rec.TardyHours,
		rec.LostHours,
		rec.RuleVersion,
		rec.LedgerEntryID,
		rec.ID,
		rec.TenantID,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dayrecord.ErrRuleVersionDowngrade
		}
		return fmt.Errorf("failed to update derived fields: %w", err)
	}

	return nil
}

// SetLastError implements dayrecord.DayRecordRepository.
func (r *dayRecordRepository) SetLastError(ctx context.Context, id string, tenantID string, msg string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE day_records SET last_error = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3`

	tag, err := q.Exec(ctx, query, msg, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to set day record error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dayrecord.ErrDayRecordNotFound
	}
	return nil
}

// ListByEmployeeAndMonth implements dayrecord.DayRecordRepository.
func (r *dayRecordRepository) ListByEmployeeAndMonth(ctx context.Context, employeeID string, tenantID string, year int, month time.Month) ([]dayrecord.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	query := `SELECT ` + dayRecordColumns + `
		FROM day_records
		WHERE employee_id = $1 AND tenant_id = $2 AND date >= $3 AND date < $4
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, employeeID, tenantID, first, next)
	if err != nil {
		return nil, fmt.Errorf("failed to query day records: %w", err)
	}
	defer rows.Close()

	var records []dayrecord.DayRecord
	for rows.Next() {
		d, err := scanDayRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day record: %w", err)
		}
		records = append(records, d)
	}

	return records, rows.Err()
}
