package kpi

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeMonthly is the per-employee monthly rollup consumed by payroll and
// reporting. It reads the persisted derived fields as they are; a stale
// rollup means a recompute was skipped, not an aggregation bug.
type EmployeeMonthly struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Active       bool   `json:"active"`

	WorkedHours      decimal.Decimal `json:"worked_hours"`
	OvertimeHours50  decimal.Decimal `json:"overtime_hours_50"`
	OvertimeHours100 decimal.Decimal `json:"overtime_hours_100"`
	TardyHours       decimal.Decimal `json:"tardy_hours"`

	AbsencesUnjustified int `json:"absences_unjustified"`
	AbsencesJustified   int `json:"absences_justified"`

	AbsenteeismPct  decimal.Decimal `json:"absenteeism_pct"`
	ProductivityPct decimal.Decimal `json:"productivity_pct"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	LaborCost       decimal.Decimal `json:"labor_cost"`

	// Excluded counts inputs that contributed zeros: day records carrying
	// an error marker, or the whole employee when their schedule or
	// calendar could not be resolved. Non-zero means something needs review.
	Excluded int `json:"excluded"`
}

// TenantMonthly is the tenant-wide rollup over the selected employee set.
type TenantMonthly struct {
	TenantID string     `json:"tenant_id"`
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`

	Headcount int `json:"headcount"`

	WorkedHours      decimal.Decimal `json:"worked_hours"`
	OvertimeHours50  decimal.Decimal `json:"overtime_hours_50"`
	OvertimeHours100 decimal.Decimal `json:"overtime_hours_100"`
	TardyHours       decimal.Decimal `json:"tardy_hours"`

	AbsencesUnjustified int `json:"absences_unjustified"`
	AbsencesJustified   int `json:"absences_justified"`

	LaborCost decimal.Decimal `json:"labor_cost"`
	Excluded  int             `json:"excluded"`
}
