package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/obratech/workforce-backend-go/internal/domain/ledger"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
)

type ledgerRepository struct {
	db *database.DB
}

// NewLedgerRepository returns the correction ledger store. The table is
// append-only; this repository deliberately has no update or delete.
func NewLedgerRepository(db *database.DB) ledger.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Append implements ledger.LedgerRepository.
func (r *ledgerRepository) Append(ctx context.Context, entry ledger.Entry) error {
	q := GetQuerier(ctx, r.db)

	diffs, err := json.Marshal(entry.Diffs)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger diffs: %w", err)
	}

	query := `
		INSERT INTO correction_ledger (
			id, tenant_id, actor, date_from, date_to, employee_filter,
			rule_version, reason, examined, changed, failed, partial, diffs
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err = q.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.Actor,
		entry.DateFrom,
		entry.DateTo,
		entry.EmployeeFilter,
		entry.RuleVersion,
		entry.Reason,
		entry.Examined,
		entry.Changed,
		entry.Failed,
		entry.Partial,
		diffs,
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

const ledgerColumns = `
	id, tenant_id, actor, date_from, date_to, employee_filter,
	rule_version, reason, examined, changed, failed, partial, diffs, created_at
`

func scanLedgerEntry(row pgx.Row) (ledger.Entry, error) {
	var e ledger.Entry
	var diffs []byte
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Actor, &e.DateFrom, &e.DateTo, &e.EmployeeFilter,
		&e.RuleVersion, &e.Reason, &e.Examined, &e.Changed, &e.Failed, &e.Partial,
		&diffs, &e.CreatedAt,
	)
	if err != nil {
		return ledger.Entry{}, err
	}
	if len(diffs) > 0 {
		if err := json.Unmarshal(diffs, &e.Diffs); err != nil {
			return ledger.Entry{}, fmt.Errorf("failed to unmarshal ledger diffs: %w", err)
		}
	}
	return e, nil
}

// GetByID implements ledger.LedgerRepository.
func (r *ledgerRepository) GetByID(ctx context.Context, id string, tenantID string) (ledger.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ledgerColumns + ` FROM correction_ledger WHERE id = $1 AND tenant_id = $2`

	e, err := scanLedgerEntry(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Entry{}, ledger.ErrEntryNotFound
		}
		return ledger.Entry{}, fmt.Errorf("failed to get ledger entry by ID: %w", err)
	}
	return e, nil
}

// List implements ledger.LedgerRepository.
func (r *ledgerRepository) List(ctx context.Context, tenantID string, limit int) ([]ledger.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 50
	}

	// ULID ids sort chronologically, so ordering by id is ordering by time.
	query := `SELECT ` + ledgerColumns + `
		FROM correction_ledger
		WHERE tenant_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
