package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string, tenantID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, full_name, region, active, monthly_salary,
		       schedule_id, hire_date, termination_date, created_at, updated_at
		FROM employees
		WHERE id = $1 AND tenant_id = $2
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id, tenantID).Scan(
		&emp.ID, &emp.TenantID, &emp.FullName, &emp.Region, &emp.Active, &emp.MonthlySalary,
		&emp.ScheduleID, &emp.HireDate, &emp.TerminationDate, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}

	return emp, nil
}

// List implements employee.EmployeeRepository.
// The tenant filter and the active filter are applied in the same query; the
// inactive set only surfaces when includeInactive is set.
func (r *employeeRepository) List(ctx context.Context, tenantID string, includeInactive bool) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, full_name, region, active, monthly_salary,
		       schedule_id, hire_date, termination_date, created_at, updated_at
		FROM employees
		WHERE tenant_id = $1
		  AND (active OR $2)
		ORDER BY full_name, id
	`

	rows, err := q.Query(ctx, query, tenantID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		err := rows.Scan(
			&emp.ID, &emp.TenantID, &emp.FullName, &emp.Region, &emp.Active, &emp.MonthlySalary,
			&emp.ScheduleID, &emp.HireDate, &emp.TerminationDate, &emp.CreatedAt, &emp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
