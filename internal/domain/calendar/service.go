package calendar

import (
	"context"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// CalendarService answers day-type questions and derives the monthly-hours
// divisor used to turn a monthly salary into an hourly rate.
//
// Business day = Monday-Friday not in the region's holiday entries.
// Saturdays and Sundays never count toward the divisor even when worked.
type CalendarService interface {
	// IsHoliday reports whether date is a holiday in region.
	IsHoliday(ctx context.Context, region string, date time.Time) (bool, error)

	// IsBusinessDay reports whether date is a business day in region.
	IsBusinessDay(ctx context.Context, region string, date time.Time) (bool, error)

	// BusinessDays counts business days in a month for region.
	BusinessDays(ctx context.Context, region string, year int, month time.Month) (int, error)

	// BusinessDaysBetween counts business days in [from, to] for region.
	BusinessDaysBetween(ctx context.Context, region string, from, to time.Time) (int, error)

	// MonthlyDivisorMinutes returns business days in the month, prorated to
	// the employee's active sub-period, multiplied by the schedule's planned
	// daily minutes.
	MonthlyDivisorMinutes(ctx context.Context, emp employee.Employee, sched schedule.ContractSchedule, year int, month time.Month) (int, error)

	// HourlyRate derives the employee's hourly rate for a month from the
	// monthly salary and the calendar-aware divisor.
	HourlyRate(ctx context.Context, emp employee.Employee, sched schedule.ContractSchedule, year int, month time.Month) (decimal.Decimal, error)
}
