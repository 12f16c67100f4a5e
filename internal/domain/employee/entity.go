package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID              string
	TenantID        string
	FullName        string
	Region          string
	Active          bool
	MonthlySalary   decimal.Decimal
	ScheduleID      *string
	HireDate        time.Time
	TerminationDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ActiveDuring reports whether the employee was employed at any point
// in the [from, to] window.
func (e Employee) ActiveDuring(from, to time.Time) bool {
	if e.HireDate.After(to) {
		return false
	}
	if e.TerminationDate != nil && e.TerminationDate.Before(from) {
		return false
	}
	return true
}

// ActiveWindow clips [from, to] to the employee's employment period.
// Used for prorated monthly divisors when hire or termination falls mid-month.
func (e Employee) ActiveWindow(from, to time.Time) (time.Time, time.Time) {
	if e.HireDate.After(from) {
		from = e.HireDate
	}
	if e.TerminationDate != nil && e.TerminationDate.Before(to) {
		to = *e.TerminationDate
	}
	return from, to
}
