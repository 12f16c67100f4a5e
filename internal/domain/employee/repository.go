package employee

import "context"

// EmployeeRepository defines data access for employees.
// All methods take tenantID to prevent cross-tenant data access.
type EmployeeRepository interface {
	// GetByID retrieves an employee with tenant isolation.
	GetByID(ctx context.Context, id string, tenantID string) (Employee, error)

	// List retrieves the tenant's employee set. Inactive employees are
	// excluded unless includeInactive is set; both filters are applied in
	// the same query.
	List(ctx context.Context, tenantID string, includeInactive bool) ([]Employee, error)
}
