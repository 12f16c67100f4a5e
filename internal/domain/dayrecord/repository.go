package dayrecord

import (
	"context"
	"time"
)

// DayRecordRepository defines data access for day records.
// All methods take or carry tenantID to prevent cross-tenant access.
// The rules engine only ever writes derived fields; raw punch fields and
// overrides belong to the operational CRUD.
type DayRecordRepository interface {
	// GetByEmployeeAndDate retrieves the record for (employee, date), or nil
	// when none exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, tenantID string) (*DayRecord, error)

	// CountByScope counts records a recompute pass would examine.
	CountByScope(ctx context.Context, scope RecomputeScope) (int, error)

	// StreamByScope calls fn for every record in scope, ordered by
	// (employee_id, date) ascending, without loading the full scope into
	// memory. A non-nil error from fn stops the stream.
	StreamByScope(ctx context.Context, scope RecomputeScope, fn func(DayRecord) error) error

	// UpdateDerived rewrites a single record's derived fields atomically,
	// bumping the version counter and clearing last_error. Raw punch fields
	// and the override are not touched.
	UpdateDerived(ctx context.Context, rec DayRecord) error

	// SetLastError marks a record that failed classification, leaving its
	// previous derived values in place.
	SetLastError(ctx context.Context, id string, tenantID string, msg string) error

	// ListByEmployeeAndMonth returns the employee's records for a month,
	// ordered by date.
	ListByEmployeeAndMonth(ctx context.Context, employeeID string, tenantID string, year int, month time.Month) ([]DayRecord, error)
}

// PassLock serializes recompute passes per tenant. Two passes against
// disjoint tenants may run in parallel; two for the same tenant may not.
type PassLock interface {
	// TryAcquire attempts to take the tenant's advisory lock without
	// blocking. Returns false when another pass holds it.
	TryAcquire(ctx context.Context, tenantID string) (bool, error)

	// Release releases the tenant's advisory lock.
	Release(ctx context.Context, tenantID string) error
}
