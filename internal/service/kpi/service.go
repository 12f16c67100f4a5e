package kpi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/kpi"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	calendarDomain "github.com/obratech/workforce-backend-go/internal/domain/calendar"
)

// aggregateParallelism bounds the per-employee fan-out of a monthly fold.
const aggregateParallelism = 8

var (
	hundred     = decimal.NewFromInt(100)
	premium50x  = decimal.RequireFromString("1.5")
	premium100x = decimal.RequireFromString("2")
	maxProdPct  = decimal.NewFromInt(200)
)

type AggregatorServiceImpl struct {
	employees employee.EmployeeRepository
	schedules schedule.ScheduleRepository
	days      dayrecord.DayRecordRepository
	calendar  calendarDomain.CalendarService
}

func NewAggregatorService(
	employees employee.EmployeeRepository,
	schedules schedule.ScheduleRepository,
	days dayrecord.DayRecordRepository,
	calendarService calendarDomain.CalendarService,
) kpi.AggregatorService {
	return &AggregatorServiceImpl{
		employees: employees,
		schedules: schedules,
		days:      days,
		calendar:  calendarService,
	}
}

// AggregateMonthly implements kpi.AggregatorService.
//
// Read-only over the persisted derived fields; it never triggers
// recomputation. Records carrying an error marker contribute zeros and are
// counted in the Excluded channel instead of being hidden.
func (s *AggregatorServiceImpl) AggregateMonthly(ctx context.Context, tenantID string, year int, month time.Month, includeInactive bool) ([]kpi.EmployeeMonthly, kpi.TenantMonthly, error) {
	caller, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, kpi.TenantMonthly{}, err
	}
	if err := caller.Authorize(tenantID); err != nil {
		return nil, kpi.TenantMonthly{}, err
	}

	emps, err := s.employees.List(ctx, tenantID, includeInactive)
	if err != nil {
		return nil, kpi.TenantMonthly{}, fmt.Errorf("failed to list employees: %w", err)
	}

	rollups := make([]kpi.EmployeeMonthly, len(emps))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregateParallelism)

	for i, emp := range emps {
		i, emp := i, emp
		g.Go(func() error {
			rollup, err := s.aggregateEmployee(gctx, emp, year, month)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// One employee's missing calendar or schedule must not sink
				// the tenant rollup. The employee stays listed with zeroed
				// figures and counts in the Excluded channel.
				slog.Warn("monthly aggregation excluded employee",
					"tenant_id", emp.TenantID,
					"employee_id", emp.ID,
					"error", err,
				)
				rollup = excludedRollup(emp)
			}
			mu.Lock()
			rollups[i] = rollup
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, kpi.TenantMonthly{}, err
	}

	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].EmployeeName < rollups[j].EmployeeName
	})

	total := kpi.TenantMonthly{
		TenantID:         tenantID,
		Year:             year,
		Month:            month,
		Headcount:        len(rollups),
		WorkedHours:      decimal.Zero,
		OvertimeHours50:  decimal.Zero,
		OvertimeHours100: decimal.Zero,
		TardyHours:       decimal.Zero,
		LaborCost:        decimal.Zero,
	}
	for _, r := range rollups {
		total.WorkedHours = total.WorkedHours.Add(r.WorkedHours)
		total.OvertimeHours50 = total.OvertimeHours50.Add(r.OvertimeHours50)
		total.OvertimeHours100 = total.OvertimeHours100.Add(r.OvertimeHours100)
		total.TardyHours = total.TardyHours.Add(r.TardyHours)
		total.AbsencesUnjustified += r.AbsencesUnjustified
		total.AbsencesJustified += r.AbsencesJustified
		total.LaborCost = total.LaborCost.Add(r.LaborCost)
		total.Excluded += r.Excluded
	}

	return rollups, total, nil
}

func (s *AggregatorServiceImpl) aggregateEmployee(ctx context.Context, emp employee.Employee, year int, month time.Month) (kpi.EmployeeMonthly, error) {
	days, err := s.days.ListByEmployeeAndMonth(ctx, emp.ID, emp.TenantID, year, month)
	if err != nil {
		return kpi.EmployeeMonthly{}, fmt.Errorf("failed to list day records for employee %s: %w", emp.ID, err)
	}

	sched, err := s.scheduleFor(ctx, emp)
	if err != nil {
		return kpi.EmployeeMonthly{}, err
	}

	businessDays, err := s.calendar.BusinessDays(ctx, emp.Region, year, month)
	if err != nil {
		return kpi.EmployeeMonthly{}, err
	}

	rate, err := s.calendar.HourlyRate(ctx, emp, sched, year, month)
	if err != nil {
		return kpi.EmployeeMonthly{}, err
	}

	return FoldEmployeeMonth(emp, sched, days, businessDays, rate), nil
}

// excludedRollup stands in for an employee whose day records, schedule or
// calendar could not be resolved.
func excludedRollup(emp employee.Employee) kpi.EmployeeMonthly {
	return kpi.EmployeeMonthly{
		EmployeeID:       emp.ID,
		EmployeeName:     emp.FullName,
		Active:           emp.Active,
		WorkedHours:      decimal.Zero,
		OvertimeHours50:  decimal.Zero,
		OvertimeHours100: decimal.Zero,
		TardyHours:       decimal.Zero,
		AbsenteeismPct:   decimal.Zero,
		ProductivityPct:  decimal.Zero,
		HourlyRate:       decimal.Zero,
		LaborCost:        decimal.Zero,
		Excluded:         1,
	}
}

func (s *AggregatorServiceImpl) scheduleFor(ctx context.Context, emp employee.Employee) (schedule.ContractSchedule, error) {
	if emp.ScheduleID != nil {
		sched, err := s.schedules.GetByID(ctx, *emp.ScheduleID, emp.TenantID)
		if err != nil {
			return schedule.ContractSchedule{}, fmt.Errorf("failed to get schedule for employee %s: %w", emp.ID, err)
		}
		return sched, nil
	}
	sched, err := s.schedules.GetTenantDefault(ctx, emp.TenantID)
	if err != nil {
		return schedule.ContractSchedule{}, fmt.Errorf("failed to get tenant default schedule: %w", err)
	}
	return sched, nil
}

// FoldEmployeeMonth folds one employee's day records into the monthly KPI
// set. Pure; exported for the aggregator and its tests.
func FoldEmployeeMonth(emp employee.Employee, sched schedule.ContractSchedule, days []dayrecord.DayRecord, businessDays int, hourlyRate decimal.Decimal) kpi.EmployeeMonthly {
	r := kpi.EmployeeMonthly{
		EmployeeID:       emp.ID,
		EmployeeName:     emp.FullName,
		Active:           emp.Active,
		WorkedHours:      decimal.Zero,
		OvertimeHours50:  decimal.Zero,
		OvertimeHours100: decimal.Zero,
		TardyHours:       decimal.Zero,
		AbsenteeismPct:   decimal.Zero,
		ProductivityPct:  decimal.Zero,
		HourlyRate:       hourlyRate,
		LaborCost:        decimal.Zero,
	}

	workedMinutes := 0
	tardyMinutes := 0
	overtime50Minutes := 0
	overtime100Minutes := 0

	for _, d := range days {
		if d.LastError != nil {
			r.Excluded++
			continue
		}

		workedMinutes += d.WorkedMinutes
		tardyMinutes += d.TardyMinutes()

		switch d.PremiumTier {
		case dayrecord.Tier50:
			overtime50Minutes += d.OvertimeMinutes
		case dayrecord.Tier100:
			overtime100Minutes += d.OvertimeMinutes
		}

		switch d.Kind {
		case dayrecord.KindAbsenceUnjustified:
			r.AbsencesUnjustified++
		case dayrecord.KindAbsenceJustified:
			r.AbsencesJustified++
		}
	}

	r.WorkedHours = minutesToHours(workedMinutes)
	r.OvertimeHours50 = minutesToHours(overtime50Minutes)
	r.OvertimeHours100 = minutesToHours(overtime100Minutes)
	r.TardyHours = minutesToHours(tardyMinutes)

	if businessDays > 0 {
		r.AbsenteeismPct = decimal.NewFromInt(int64(r.AbsencesUnjustified)).
			Div(decimal.NewFromInt(int64(businessDays))).
			Mul(hundred).
			RoundBank(2)

		plannedMinutes := businessDays * sched.PlannedDailyMinutes
		if plannedMinutes > 0 {
			prod := decimal.NewFromInt(int64(workedMinutes)).
				Div(decimal.NewFromInt(int64(plannedMinutes))).
				Mul(hundred).
				RoundBank(2)
			if prod.GreaterThan(maxProdPct) {
				prod = maxProdPct
			}
			r.ProductivityPct = prod
		}
	}

	baseCost := r.WorkedHours.Mul(hourlyRate)
	cost50 := r.OvertimeHours50.Mul(hourlyRate).Mul(premium50x)
	cost100 := r.OvertimeHours100.Mul(hourlyRate).Mul(premium100x)
	r.LaborCost = baseCost.Add(cost50).Add(cost100).RoundBank(2)

	return r
}

func minutesToHours(m int) decimal.Decimal {
	return decimal.New(int64(m), 0).Div(decimal.NewFromInt(60)).RoundBank(2)
}
