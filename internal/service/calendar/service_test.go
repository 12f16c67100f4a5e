package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/calendar"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHolidayRepo is an in-memory calendar keyed by region.
type fakeHolidayRepo struct {
	entries map[string][]calendar.HolidayEntry
}

func newFakeHolidayRepo(regions ...string) *fakeHolidayRepo {
	r := &fakeHolidayRepo{entries: make(map[string][]calendar.HolidayEntry)}
	for _, region := range regions {
		r.entries[region] = nil
	}
	return r
}

func (r *fakeHolidayRepo) add(region string, date time.Time) {
	r.entries[region] = append(r.entries[region], calendar.HolidayEntry{
		Region: region,
		Date:   date,
		Kind:   calendar.HolidayNational,
	})
}

func (r *fakeHolidayRepo) HasRegion(ctx context.Context, region string) (bool, error) {
	_, ok := r.entries[region]
	return ok, nil
}

func (r *fakeHolidayRepo) ListByRange(ctx context.Context, region string, from, to time.Time) ([]calendar.HolidayEntry, error) {
	var out []calendar.HolidayEntry
	for _, e := range r.entries[region] {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

const testRegion = "BR-national"

func eightHourSchedule() schedule.ContractSchedule {
	lunchOut := 12 * 60
	lunchReturn := 13 * 60
	return schedule.ContractSchedule{
		ID:                  "sched-8h",
		EntryMinute:         7 * 60,
		ExitMinute:          16 * 60,
		LunchOutMinute:      &lunchOut,
		LunchReturnMinute:   &lunchReturn,
		WeekdayMask:         schedule.MondayToFriday,
		PlannedDailyMinutes: 480,
	}
}

func testEmployee(salary string) employee.Employee {
	return employee.Employee{
		ID:            "emp-1",
		TenantID:      "tenant-a",
		FullName:      "Test Mason",
		Region:        testRegion,
		Active:        true,
		MonthlySalary: decimal.RequireFromString(salary),
		HireDate:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBusinessDays_July2025(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))

	days, err := svc.BusinessDays(context.Background(), testRegion, 2025, time.July)

	require.NoError(t, err)
	assert.Equal(t, 23, days)
}

func TestBusinessDays_AlwaysWithinCalendarBounds(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))

	for month := time.January; month <= time.December; month++ {
		days, err := svc.BusinessDays(context.Background(), testRegion, 2025, month)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, days, 19, "month %s", month)
		assert.LessOrEqual(t, days, 23, "month %s", month)
	}
}

func TestBusinessDays_MidMonthHolidayShrinksCount(t *testing.T) {
	repo := newFakeHolidayRepo(testRegion)
	repo.add(testRegion, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)) // a Wednesday
	svc := NewCalendarService(repo)

	days, err := svc.BusinessDays(context.Background(), testRegion, 2025, time.July)

	require.NoError(t, err)
	assert.Equal(t, 22, days)
}

func TestBusinessDays_WeekendHolidayChangesNothing(t *testing.T) {
	repo := newFakeHolidayRepo(testRegion)
	repo.add(testRegion, time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)) // a Saturday
	svc := NewCalendarService(repo)

	days, err := svc.BusinessDays(context.Background(), testRegion, 2025, time.July)

	require.NoError(t, err)
	assert.Equal(t, 23, days)
}

func TestIsBusinessDay(t *testing.T) {
	repo := newFakeHolidayRepo(testRegion)
	repo.add(testRegion, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	svc := NewCalendarService(repo)
	ctx := context.Background()

	weekday, err := svc.IsBusinessDay(ctx, testRegion, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, weekday)

	holiday, err := svc.IsBusinessDay(ctx, testRegion, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, holiday)

	sunday, err := svc.IsBusinessDay(ctx, testRegion, time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, sunday)
}

func TestHourlyRate_CalendarAwareDivisor(t *testing.T) {
	// Salary 2200 over July 2025: 23 business days x 8h = 184h.
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))

	rate, err := svc.HourlyRate(context.Background(), testEmployee("2200"), eightHourSchedule(), 2025, time.July)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("11.9565").Equal(rate), "got %s", rate)

	// The 50% overtime hour cost follows the calendar-aware rate.
	ot50 := rate.Mul(decimal.RequireFromString("1.5")).RoundBank(2)
	assert.True(t, decimal.RequireFromString("17.93").Equal(ot50), "got %s", ot50)
}

func TestHourlyRate_HolidayRaisesRate(t *testing.T) {
	// Fewer business days means a smaller divisor and a higher hourly rate.
	plain := NewCalendarService(newFakeHolidayRepo(testRegion))
	withHoliday := newFakeHolidayRepo(testRegion)
	withHoliday.add(testRegion, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	shortened := NewCalendarService(withHoliday)
	ctx := context.Background()

	base, err := plain.HourlyRate(ctx, testEmployee("2200"), eightHourSchedule(), 2025, time.July)
	require.NoError(t, err)
	raised, err := shortened.HourlyRate(ctx, testEmployee("2200"), eightHourSchedule(), 2025, time.July)
	require.NoError(t, err)

	assert.True(t, raised.GreaterThan(base), "%s should exceed %s", raised, base)
}

func TestMonthlyDivisor_ProratesMidMonthHire(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))
	emp := testEmployee("2200")
	emp.HireDate = time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)

	minutes, err := svc.MonthlyDivisorMinutes(context.Background(), emp, eightHourSchedule(), 2025, time.July)

	require.NoError(t, err)
	// 12 business days remain from July 16 through July 31.
	assert.Equal(t, 12*480, minutes)
}

func TestMonthlyDivisor_TerminatedBeforeMonth(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))
	emp := testEmployee("2200")
	term := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	emp.TerminationDate = &term

	minutes, err := svc.MonthlyDivisorMinutes(context.Background(), emp, eightHourSchedule(), 2025, time.July)
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	rate, err := svc.HourlyRate(context.Background(), emp, eightHourSchedule(), 2025, time.July)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestMonthlyDivisor_IncompleteSchedule(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))
	sched := eightHourSchedule()
	sched.PlannedDailyMinutes = 0

	_, err := svc.MonthlyDivisorMinutes(context.Background(), testEmployee("2200"), sched, 2025, time.July)

	assert.ErrorIs(t, err, schedule.ErrScheduleIncomplete)
}

func TestCalendar_UnknownRegionIsLoud(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo(testRegion))

	_, err := svc.IsHoliday(context.Background(), "XX-nowhere", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, calendar.ErrRegionUnknown)

	_, err = svc.BusinessDays(context.Background(), "XX-nowhere", 2025, time.July)
	assert.ErrorIs(t, err, calendar.ErrRegionUnknown)
}
