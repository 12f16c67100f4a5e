package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/calendar"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

type CalendarServiceImpl struct {
	holidays calendar.HolidayRepository
}

func NewCalendarService(holidays calendar.HolidayRepository) calendar.CalendarService {
	return &CalendarServiceImpl{holidays: holidays}
}

// IsHoliday implements calendar.CalendarService.
func (s *CalendarServiceImpl) IsHoliday(ctx context.Context, region string, date time.Time) (bool, error) {
	set, err := s.holidaySet(ctx, region, date, date)
	if err != nil {
		return false, err
	}
	return set[dateKey(date)], nil
}

// IsBusinessDay implements calendar.CalendarService.
func (s *CalendarServiceImpl) IsBusinessDay(ctx context.Context, region string, date time.Time) (bool, error) {
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		return false, nil
	}
	holiday, err := s.IsHoliday(ctx, region, date)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

// BusinessDays implements calendar.CalendarService.
func (s *CalendarServiceImpl) BusinessDays(ctx context.Context, region string, year int, month time.Month) (int, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return s.BusinessDaysBetween(ctx, region, first, last)
}

// BusinessDaysBetween implements calendar.CalendarService.
func (s *CalendarServiceImpl) BusinessDaysBetween(ctx context.Context, region string, from, to time.Time) (int, error) {
	if to.Before(from) {
		return 0, nil
	}

	set, err := s.holidaySet(ctx, region, from, to)
	if err != nil {
		return 0, err
	}

	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if set[dateKey(d)] {
			continue
		}
		count++
	}
	return count, nil
}

// MonthlyDivisorMinutes implements calendar.CalendarService.
//
// The divisor is business days x planned daily minutes, computed from the
// actual calendar month. A fixed 220-hour divisor misprices overtime in
// every month whose business-day count deviates from 22. Employees hired or
// terminated mid-month get a prorated divisor over their active sub-period.
func (s *CalendarServiceImpl) MonthlyDivisorMinutes(ctx context.Context, emp employee.Employee, sched schedule.ContractSchedule, year int, month time.Month) (int, error) {
	if !sched.Complete() {
		return 0, schedule.ErrScheduleIncomplete
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	if !emp.ActiveDuring(first, last) {
		return 0, nil
	}
	from, to := emp.ActiveWindow(first, last)

	days, err := s.BusinessDaysBetween(ctx, emp.Region, from, to)
	if err != nil {
		return 0, err
	}
	return days * sched.PlannedDailyMinutes, nil
}

// HourlyRate implements calendar.CalendarService.
func (s *CalendarServiceImpl) HourlyRate(ctx context.Context, emp employee.Employee, sched schedule.ContractSchedule, year int, month time.Month) (decimal.Decimal, error) {
	divisorMinutes, err := s.MonthlyDivisorMinutes(ctx, emp, sched, year, month)
	if err != nil {
		return decimal.Zero, err
	}
	if divisorMinutes == 0 {
		return decimal.Zero, nil
	}

	divisorHours := decimal.New(int64(divisorMinutes), 0).Div(decimal.NewFromInt(60))
	return emp.MonthlySalary.DivRound(divisorHours, 4), nil
}

// holidaySet loads the region's holidays for [from, to] as a date-keyed set.
func (s *CalendarServiceImpl) holidaySet(ctx context.Context, region string, from, to time.Time) (map[string]bool, error) {
	known, err := s.holidays.HasRegion(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to check calendar region %q: %w", region, err)
	}
	if !known {
		return nil, fmt.Errorf("region %q: %w", region, calendar.ErrRegionUnknown)
	}

	entries, err := s.holidays.ListByRange(ctx, region, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays for region %q: %w", region, err)
	}

	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[dateKey(e.Date)] = true
	}
	return set, nil
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
