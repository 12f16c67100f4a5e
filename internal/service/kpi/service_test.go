package kpi

import (
	"context"
	"fmt"
	"testing"
	"time"

	calendarDomain "github.com/obratech/workforce-backend-go/internal/domain/calendar"
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/kpi"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"
	calendarService "github.com/obratech/workforce-backend-go/internal/service/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenant = "tenant-a"
	testRegion = "BR-national"
)

// --- in-memory fakes ---

type fakeEmployeeRepo struct {
	emps []employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string, tenantID string) (employee.Employee, error) {
	for _, e := range r.emps {
		if e.ID == id && e.TenantID == tenantID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) List(ctx context.Context, tenantID string, includeInactive bool) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range r.emps {
		if e.TenantID != tenantID {
			continue
		}
		if !e.Active && !includeInactive {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeScheduleRepo struct {
	def schedule.ContractSchedule
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string, tenantID string) (schedule.ContractSchedule, error) {
	if r.def.ID == id {
		return r.def, nil
	}
	return schedule.ContractSchedule{}, schedule.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) GetTenantDefault(ctx context.Context, tenantID string) (schedule.ContractSchedule, error) {
	return r.def, nil
}

type fakeDayRepo struct {
	byEmployee map[string][]dayrecord.DayRecord
}

func (r *fakeDayRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, tenantID string) (*dayrecord.DayRecord, error) {
	return nil, nil
}

func (r *fakeDayRepo) CountByScope(ctx context.Context, scope dayrecord.RecomputeScope) (int, error) {
	return 0, nil
}

func (r *fakeDayRepo) StreamByScope(ctx context.Context, scope dayrecord.RecomputeScope, fn func(dayrecord.DayRecord) error) error {
	return nil
}

func (r *fakeDayRepo) UpdateDerived(ctx context.Context, rec dayrecord.DayRecord) error {
	return nil
}

func (r *fakeDayRepo) SetLastError(ctx context.Context, id string, tenantID string, msg string) error {
	return nil
}

func (r *fakeDayRepo) ListByEmployeeAndMonth(ctx context.Context, employeeID string, tenantID string, year int, month time.Month) ([]dayrecord.DayRecord, error) {
	return r.byEmployee[employeeID], nil
}

type fakeHolidayRepo struct{}

func (fakeHolidayRepo) HasRegion(ctx context.Context, region string) (bool, error) {
	return region == testRegion, nil
}

func (fakeHolidayRepo) ListByRange(ctx context.Context, region string, from, to time.Time) ([]calendarDomain.HolidayEntry, error) {
	return nil, nil
}

// --- fixtures ---

func defaultSchedule() schedule.ContractSchedule {
	lunchOut := 12 * 60
	lunchReturn := 13 * 60
	return schedule.ContractSchedule{
		ID:                  "sched-default",
		TenantID:            testTenant,
		EntryMinute:         7 * 60,
		ExitMinute:          16 * 60,
		LunchOutMinute:      &lunchOut,
		LunchReturnMinute:   &lunchReturn,
		WeekdayMask:         schedule.MondayToFriday,
		PlannedDailyMinutes: 480,
		IsDefault:           true,
	}
}

func newEmployee(id, name string, active bool) employee.Employee {
	return employee.Employee{
		ID:            id,
		TenantID:      testTenant,
		FullName:      name,
		Region:        testRegion,
		Active:        active,
		MonthlySalary: decimal.RequireFromString("2200"),
		HireDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func workedDay(employeeID string, day int, workedMinutes, overtimeMinutes int, tier dayrecord.PremiumTier) dayrecord.DayRecord {
	kind := dayrecord.KindWeekdayNormal
	if tier == dayrecord.Tier100 {
		kind = dayrecord.KindSundayWorked
	}
	return dayrecord.DayRecord{
		ID:              fmt.Sprintf("%s-%d", employeeID, day),
		EmployeeID:      employeeID,
		TenantID:        testTenant,
		Date:            time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC),
		Kind:            kind,
		WorkedMinutes:   workedMinutes,
		OvertimeMinutes: overtimeMinutes,
		PremiumTier:     tier,
	}
}

func absenceDay(employeeID string, day int) dayrecord.DayRecord {
	return dayrecord.DayRecord{
		ID:          fmt.Sprintf("%s-%d", employeeID, day),
		EmployeeID:  employeeID,
		TenantID:    testTenant,
		Date:        time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC),
		Kind:        dayrecord.KindAbsenceUnjustified,
		LostMinutes: 480,
	}
}

func scopedCtx() context.Context {
	return tenant.WithScope(context.Background(), tenant.Scope{
		TenantID: testTenant,
		Actor:    "test",
	})
}

// --- FoldEmployeeMonth ---

func TestFoldEmployeeMonth_LaborCost(t *testing.T) {
	emp := newEmployee("emp-1", "Alice Mason", true)
	rate := decimal.NewFromInt(10)
	days := []dayrecord.DayRecord{
		workedDay("emp-1", 1, 480, 0, dayrecord.TierNone),
		workedDay("emp-1", 2, 120, 60, dayrecord.Tier50),
		workedDay("emp-1", 6, 0, 120, dayrecord.Tier100),
		absenceDay("emp-1", 3),
	}

	r := FoldEmployeeMonth(emp, defaultSchedule(), days, 20, rate)

	// 600 worked minutes, 60 at 50%, 120 at 100%.
	assert.True(t, decimal.NewFromInt(10).Equal(r.WorkedHours), "worked %s", r.WorkedHours)
	assert.True(t, decimal.NewFromInt(1).Equal(r.OvertimeHours50), "ot50 %s", r.OvertimeHours50)
	assert.True(t, decimal.NewFromInt(2).Equal(r.OvertimeHours100), "ot100 %s", r.OvertimeHours100)

	// 10h*10 + 1h*10*1.5 + 2h*10*2.0 = 155.
	assert.True(t, decimal.NewFromInt(155).Equal(r.LaborCost), "cost %s", r.LaborCost)
}

func TestFoldEmployeeMonth_AbsenteeismAndProductivity(t *testing.T) {
	emp := newEmployee("emp-1", "Alice Mason", true)
	days := []dayrecord.DayRecord{
		workedDay("emp-1", 1, 600, 0, dayrecord.TierNone),
		absenceDay("emp-1", 2),
	}

	r := FoldEmployeeMonth(emp, defaultSchedule(), days, 20, decimal.NewFromInt(10))

	assert.Equal(t, 1, r.AbsencesUnjustified)
	// 1 absence over 20 business days.
	assert.True(t, decimal.NewFromInt(5).Equal(r.AbsenteeismPct), "absenteeism %s", r.AbsenteeismPct)
	// 600 worked over 20*480 planned minutes.
	assert.True(t, decimal.RequireFromString("6.25").Equal(r.ProductivityPct), "productivity %s", r.ProductivityPct)
}

func TestFoldEmployeeMonth_ProductivityClamped(t *testing.T) {
	emp := newEmployee("emp-1", "Alice Mason", true)
	days := []dayrecord.DayRecord{
		workedDay("emp-1", 1, 5*480, 0, dayrecord.TierNone),
	}

	// One business day planned, five days' worth of minutes worked.
	r := FoldEmployeeMonth(emp, defaultSchedule(), days, 1, decimal.NewFromInt(10))

	assert.True(t, decimal.NewFromInt(200).Equal(r.ProductivityPct), "productivity %s", r.ProductivityPct)
}

func TestFoldEmployeeMonth_ErroredRecordsExcluded(t *testing.T) {
	emp := newEmployee("emp-1", "Alice Mason", true)
	bad := workedDay("emp-1", 1, 480, 60, dayrecord.Tier50)
	msg := "schedule is missing fields required for day arithmetic"
	bad.LastError = &msg
	days := []dayrecord.DayRecord{
		bad,
		workedDay("emp-1", 2, 300, 0, dayrecord.TierNone),
	}

	r := FoldEmployeeMonth(emp, defaultSchedule(), days, 20, decimal.NewFromInt(10))

	assert.Equal(t, 1, r.Excluded)
	// The errored record contributes nothing.
	assert.True(t, decimal.NewFromInt(5).Equal(r.WorkedHours), "worked %s", r.WorkedHours)
	assert.True(t, r.OvertimeHours50.IsZero())
}

func TestFoldEmployeeMonth_EmptyMonth(t *testing.T) {
	emp := newEmployee("emp-1", "Alice Mason", true)

	r := FoldEmployeeMonth(emp, defaultSchedule(), nil, 22, decimal.NewFromInt(10))

	assert.True(t, r.WorkedHours.IsZero())
	assert.True(t, r.LaborCost.IsZero())
	assert.True(t, r.AbsenteeismPct.IsZero())
}

// --- AggregateMonthly ---

func buildAggregator(emps []employee.Employee, byEmployee map[string][]dayrecord.DayRecord) kpi.AggregatorService {
	return NewAggregatorService(
		&fakeEmployeeRepo{emps: emps},
		&fakeScheduleRepo{def: defaultSchedule()},
		&fakeDayRepo{byEmployee: byEmployee},
		calendarService.NewCalendarService(fakeHolidayRepo{}),
	)
}

func TestAggregateMonthly_InactiveEmployeesDoNotLeak(t *testing.T) {
	// Ten active employees with two absences between them, two inactive
	// employees with three more.
	var emps []employee.Employee
	byEmployee := make(map[string][]dayrecord.DayRecord)
	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("active-%02d", i)
		emps = append(emps, newEmployee(id, fmt.Sprintf("Active %02d", i), true))
		byEmployee[id] = []dayrecord.DayRecord{workedDay(id, 1, 480, 0, dayrecord.TierNone)}
	}
	byEmployee["active-01"] = append(byEmployee["active-01"], absenceDay("active-01", 2))
	byEmployee["active-02"] = append(byEmployee["active-02"], absenceDay("active-02", 2))

	emps = append(emps,
		newEmployee("gone-1", "Gone One", false),
		newEmployee("gone-2", "Gone Two", false),
	)
	byEmployee["gone-1"] = []dayrecord.DayRecord{absenceDay("gone-1", 1), absenceDay("gone-1", 2)}
	byEmployee["gone-2"] = []dayrecord.DayRecord{absenceDay("gone-2", 1)}

	svc := buildAggregator(emps, byEmployee)

	rollups, total, err := svc.AggregateMonthly(scopedCtx(), testTenant, 2025, time.July, false)
	require.NoError(t, err)
	assert.Len(t, rollups, 10)
	assert.Equal(t, 10, total.Headcount)
	assert.Equal(t, 2, total.AbsencesUnjustified)

	rollups, total, err = svc.AggregateMonthly(scopedCtx(), testTenant, 2025, time.July, true)
	require.NoError(t, err)
	assert.Len(t, rollups, 12)
	assert.Equal(t, 12, total.Headcount)
	assert.Equal(t, 5, total.AbsencesUnjustified)
}

func TestAggregateMonthly_SortedByName(t *testing.T) {
	emps := []employee.Employee{
		newEmployee("emp-2", "Zulmira Costa", true),
		newEmployee("emp-1", "Antonio Lima", true),
	}
	svc := buildAggregator(emps, map[string][]dayrecord.DayRecord{})

	rollups, _, err := svc.AggregateMonthly(scopedCtx(), testTenant, 2025, time.July, false)

	require.NoError(t, err)
	require.Len(t, rollups, 2)
	assert.Equal(t, "Antonio Lima", rollups[0].EmployeeName)
	assert.Equal(t, "Zulmira Costa", rollups[1].EmployeeName)
}

func TestAggregateMonthly_TenantRollupSumsEmployees(t *testing.T) {
	emps := []employee.Employee{
		newEmployee("emp-1", "Alice Mason", true),
		newEmployee("emp-2", "Bruno Reis", true),
	}
	byEmployee := map[string][]dayrecord.DayRecord{
		"emp-1": {workedDay("emp-1", 1, 480, 60, dayrecord.Tier50)},
		"emp-2": {workedDay("emp-2", 6, 240, 240, dayrecord.Tier100)},
	}
	svc := buildAggregator(emps, byEmployee)

	rollups, total, err := svc.AggregateMonthly(scopedCtx(), testTenant, 2025, time.July, false)

	require.NoError(t, err)
	wantWorked := decimal.Zero
	wantCost := decimal.Zero
	for _, r := range rollups {
		wantWorked = wantWorked.Add(r.WorkedHours)
		wantCost = wantCost.Add(r.LaborCost)
	}
	assert.True(t, wantWorked.Equal(total.WorkedHours))
	assert.True(t, wantCost.Equal(total.LaborCost))
	assert.True(t, decimal.NewFromInt(1).Equal(total.OvertimeHours50))
	assert.True(t, decimal.NewFromInt(4).Equal(total.OvertimeHours100))
}

func TestAggregateMonthly_UnknownRegionExcludesOnlyThatEmployee(t *testing.T) {
	// Bruno's region has no calendar loaded; Alice's month must still come
	// through intact.
	healthy := newEmployee("emp-1", "Alice Mason", true)
	lost := newEmployee("emp-2", "Bruno Reis", true)
	lost.Region = "XX-nowhere"
	byEmployee := map[string][]dayrecord.DayRecord{
		"emp-1": {workedDay("emp-1", 1, 480, 60, dayrecord.Tier50)},
		"emp-2": {workedDay("emp-2", 2, 480, 0, dayrecord.TierNone)},
	}
	svc := buildAggregator([]employee.Employee{healthy, lost}, byEmployee)

	rollups, total, err := svc.AggregateMonthly(scopedCtx(), testTenant, 2025, time.July, false)

	require.NoError(t, err)
	require.Len(t, rollups, 2)

	assert.Equal(t, "Alice Mason", rollups[0].EmployeeName)
	assert.True(t, decimal.NewFromInt(8).Equal(rollups[0].WorkedHours), "worked %s", rollups[0].WorkedHours)
	assert.Equal(t, 0, rollups[0].Excluded)

	// The mis-regioned employee stays visible, zeroed and flagged.
	assert.Equal(t, "Bruno Reis", rollups[1].EmployeeName)
	assert.True(t, rollups[1].WorkedHours.IsZero())
	assert.True(t, rollups[1].LaborCost.IsZero())
	assert.Equal(t, 1, rollups[1].Excluded)

	assert.Equal(t, 2, total.Headcount)
	assert.Equal(t, 1, total.Excluded)
	assert.True(t, decimal.NewFromInt(8).Equal(total.WorkedHours), "worked %s", total.WorkedHours)
}

func TestAggregateMonthly_ScopeEnforced(t *testing.T) {
	svc := buildAggregator(nil, nil)

	_, _, err := svc.AggregateMonthly(scopedCtx(), "tenant-b", 2025, time.July, false)

	assert.ErrorIs(t, err, tenant.ErrScopeViolation)
}
