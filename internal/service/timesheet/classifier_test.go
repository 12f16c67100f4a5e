package timesheet

import (
	"testing"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutesPtr(m int) *int { return &m }

func kindPtr(k dayrecord.Kind) *dayrecord.Kind { return &k }

// crewSchedule is the common construction-crew contract: 07:12-17:00,
// lunch 12:00-13:00, Monday to Friday, 8.8h planned per day.
func crewSchedule() schedule.ContractSchedule {
	return schedule.ContractSchedule{
		ID:                  "sched-crew",
		TenantID:            "tenant-a",
		Name:                "crew standard",
		EntryMinute:         7*60 + 12,
		ExitMinute:          17 * 60,
		LunchOutMinute:      minutesPtr(12 * 60),
		LunchReturnMinute:   minutesPtr(13 * 60),
		WeekdayMask:         schedule.MondayToFriday,
		PlannedDailyMinutes: 528,
	}
}

// noLunchSchedule has no planned lunch window.
func noLunchSchedule() schedule.ContractSchedule {
	s := crewSchedule()
	s.LunchOutMinute = nil
	s.LunchReturnMinute = nil
	return s
}

// date helpers pinned to a known week: 2025-07-07 is a Monday.
var (
	monday   = time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2025, 7, 13, 0, 0, 0, 0, time.UTC)
)

func record(date time.Time, punches ...int) dayrecord.DayRecord {
	rec := dayrecord.DayRecord{
		ID:         "rec-1",
		EmployeeID: "emp-1",
		TenantID:   "tenant-a",
		Date:       date,
	}
	if len(punches) > 0 {
		rec.EntryMinute = minutesPtr(punches[0])
	}
	if len(punches) > 1 {
		rec.LunchOutMinute = minutesPtr(punches[1])
	}
	if len(punches) > 2 {
		rec.LunchReturnMinute = minutesPtr(punches[2])
	}
	if len(punches) > 3 {
		rec.ExitMinute = minutesPtr(punches[3])
	}
	return rec
}

func TestClassify_WeekdayComplete(t *testing.T) {
	rec := record(monday, 7*60+5, 12*60, 13*60, 17*60+50)

	kind, emitted, err := Classify(rec, crewSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindWeekdayNormal, kind)
}

func TestClassify_WeekdayMissingExit(t *testing.T) {
	rec := record(monday, 7*60+5, 12*60)

	kind, emitted, err := Classify(rec, crewSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindWeekdayPartial, kind)
}

func TestClassify_WeekdayMissingLunchPair(t *testing.T) {
	// Entry and exit present but the schedule expects a lunch pair.
	rec := record(monday)
	rec.EntryMinute = minutesPtr(7 * 60)
	rec.ExitMinute = minutesPtr(17 * 60)

	kind, emitted, err := Classify(rec, crewSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindWeekdayPartial, kind)
}

func TestClassify_NoLunchBreakSchedule(t *testing.T) {
	rec := record(monday)
	rec.EntryMinute = minutesPtr(7 * 60)
	rec.ExitMinute = minutesPtr(16 * 60)

	kind, emitted, err := Classify(rec, noLunchSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindNoLunchBreak, kind)
}

func TestClassify_HolidayBeatsSunday(t *testing.T) {
	// A holiday that falls on a Sunday classifies as holiday, not Sunday.
	rec := record(sunday, 7*60, 12*60, 13*60, 16*60)

	kind, emitted, err := Classify(rec, crewSchedule(), true)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindHolidayWorked, kind)
}

func TestClassify_HolidayOff(t *testing.T) {
	kind, emitted, err := Classify(record(monday), crewSchedule(), true)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindHolidayOff, kind)
}

func TestClassify_SundayBeatsSaturdayRules(t *testing.T) {
	kind, emitted, err := Classify(record(sunday, 8*60), crewSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindSundayWorked, kind)
}

func TestClassify_SaturdayWorkedAndOff(t *testing.T) {
	kind, _, err := Classify(record(saturday, 7*60, 12*60, 13*60, 16*60), crewSchedule(), false)
	require.NoError(t, err)
	assert.Equal(t, dayrecord.KindSaturdayWorked, kind)

	kind, _, err = Classify(record(saturday), crewSchedule(), false)
	require.NoError(t, err)
	assert.Equal(t, dayrecord.KindSaturdayOff, kind)
}

func TestClassify_AbsenceOnScheduledDay(t *testing.T) {
	kind, emitted, err := Classify(record(monday), crewSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindAbsenceUnjustified, kind)
}

func TestClassify_OutsideMaskNoPunchesIsSilentlySkipped(t *testing.T) {
	// Wednesday is outside a Monday-Tuesday-only mask; no punches, no record.
	sched := crewSchedule()
	sched.WeekdayMask = schedule.WeekdayMask{true, true, false, false, false, false, false}
	wednesday := monday.AddDate(0, 0, 2)

	_, emitted, err := Classify(record(wednesday), sched, false)

	require.NoError(t, err)
	assert.False(t, emitted)
}

func TestClassify_OverrideWins(t *testing.T) {
	rec := record(monday)
	rec.OverrideKind = kindPtr(dayrecord.KindAbsenceJustified)

	kind, emitted, err := Classify(rec, crewSchedule(), false)

	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, dayrecord.KindAbsenceJustified, kind)
}

func TestClassify_OverrideVacation(t *testing.T) {
	rec := record(monday)
	rec.OverrideKind = kindPtr(dayrecord.KindVacation)

	kind, _, err := Classify(rec, crewSchedule(), false)

	require.NoError(t, err)
	assert.Equal(t, dayrecord.KindVacation, kind)
}

func TestClassify_OverrideAmbiguity(t *testing.T) {
	tests := []struct {
		name      string
		rec       dayrecord.DayRecord
		override  dayrecord.Kind
		isHoliday bool
	}{
		{
			name:     "absence override with punches",
			rec:      record(monday, 7*60, 12*60, 13*60, 17*60),
			override: dayrecord.KindAbsenceJustified,
		},
		{
			name:     "vacation override with punches",
			rec:      record(monday, 7*60),
			override: dayrecord.KindVacation,
		},
		{
			name:     "saturday_worked override without punches",
			rec:      record(saturday),
			override: dayrecord.KindSaturdayWorked,
		},
		{
			name:     "holiday override on a plain weekday",
			rec:      record(monday),
			override: dayrecord.KindHolidayOff,
		},
		{
			name:     "sunday override on a monday",
			rec:      record(monday),
			override: dayrecord.KindSundayOff,
		},
		{
			name:     "saturday override on a monday",
			rec:      record(monday),
			override: dayrecord.KindSaturdayOff,
		},
		{
			name:      "weekday override on a holiday",
			rec:       record(monday, 7*60, 12*60, 13*60, 17*60),
			override:  dayrecord.KindWeekdayNormal,
			isHoliday: true,
		},
		{
			name:     "unknown override kind",
			rec:      record(monday, 7*60, 12*60, 13*60, 17*60),
			override: dayrecord.Kind("night_shift"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rec.OverrideKind = kindPtr(tt.override)

			_, _, err := Classify(tt.rec, crewSchedule(), tt.isHoliday)

			assert.ErrorIs(t, err, dayrecord.ErrClassificationAmbiguous)
		})
	}
}

func TestClassify_HalfDayOverride(t *testing.T) {
	rec := record(monday, 7*60, 11*60)
	rec.OverrideKind = kindPtr(dayrecord.KindHalfDay)

	kind, _, err := Classify(rec, crewSchedule(), false)

	require.NoError(t, err)
	assert.Equal(t, dayrecord.KindHalfDay, kind)
}
