package kpi

import (
	"context"
	"time"
)

// AggregatorService folds persisted day records into monthly rollups.
// Read-only and parallel-safe; it never triggers recomputation.
type AggregatorService interface {
	// AggregateMonthly returns per-employee rollups plus the tenant rollup
	// for a month. Inactive employees are excluded unless includeInactive
	// is set.
	AggregateMonthly(ctx context.Context, tenantID string, year int, month time.Month, includeInactive bool) ([]EmployeeMonthly, TenantMonthly, error)
}
