package schedule

import "context"

// ScheduleRepository defines data access for contract schedules.
type ScheduleRepository interface {
	// GetByID retrieves a schedule with tenant isolation.
	GetByID(ctx context.Context, id string, tenantID string) (ContractSchedule, error)

	// GetTenantDefault retrieves the tenant's default schedule, used for
	// employees without an explicit assignment. Returns ErrScheduleNotFound
	// when the tenant has no default configured.
	GetTenantDefault(ctx context.Context, tenantID string) (ContractSchedule, error)
}
