package timesheet

import (
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
)

// RuleVersion is the semantic version of the classification and arithmetic
// rules. Bumped whenever a rule change alters derived values; a recompute
// pass never downgrades a record below it.
const RuleVersion = 3

// Classify maps a day record's punches, the employee's contract schedule
// and the calendar day-type to a day kind. Pure, no I/O.
//
// The third return is false when no record should be emitted at all: a day
// outside the schedule's weekday mask with no punches is silently skipped.
func Classify(rec dayrecord.DayRecord, sched schedule.ContractSchedule, isHoliday bool) (dayrecord.Kind, bool, error) {
	weekday := rec.Date.Weekday()

	// A user override wins when it does not contradict the day.
	if rec.OverrideKind != nil {
		if err := validateOverride(*rec.OverrideKind, rec, weekday, isHoliday); err != nil {
			return "", false, err
		}
		return *rec.OverrideKind, true, nil
	}

	if isHoliday {
		if rec.HasPunches() {
			return dayrecord.KindHolidayWorked, true, nil
		}
		return dayrecord.KindHolidayOff, true, nil
	}

	if weekday == time.Sunday {
		if rec.HasPunches() {
			return dayrecord.KindSundayWorked, true, nil
		}
		return dayrecord.KindSundayOff, true, nil
	}

	if weekday == time.Saturday {
		if rec.HasPunches() {
			return dayrecord.KindSaturdayWorked, true, nil
		}
		return dayrecord.KindSaturdayOff, true, nil
	}

	if rec.HasPunches() {
		if completePunches(rec, sched) {
			if !sched.HasLunchWindow() {
				return dayrecord.KindNoLunchBreak, true, nil
			}
			return dayrecord.KindWeekdayNormal, true, nil
		}
		return dayrecord.KindWeekdayPartial, true, nil
	}

	if sched.WeekdayMask.WorksOn(weekday) {
		return dayrecord.KindAbsenceUnjustified, true, nil
	}

	// Outside the weekday mask with no punches: no record.
	return "", false, nil
}

// completePunches reports whether the record carries every punch the
// schedule expects: entry, exit, and the lunch pair when the schedule has a
// planned lunch window.
func completePunches(rec dayrecord.DayRecord, sched schedule.ContractSchedule) bool {
	if rec.EntryMinute == nil || rec.ExitMinute == nil {
		return false
	}
	if sched.HasLunchWindow() && !rec.HasLunchPair() {
		return false
	}
	return true
}

// validateOverride rejects overrides that contradict a hard constraint.
func validateOverride(kind dayrecord.Kind, rec dayrecord.DayRecord, weekday time.Weekday, isHoliday bool) error {
	if !kind.Valid() {
		return dayrecord.ErrClassificationAmbiguous
	}

	// Punches recorded but the day marked as not worked.
	if rec.HasPunches() && (kind.IsAbsence() || kind.IsOff()) {
		return dayrecord.ErrClassificationAmbiguous
	}

	// A worked special kind claims hours that were never punched.
	if kind.IsSpecialWorked() && !rec.HasPunches() {
		return dayrecord.ErrClassificationAmbiguous
	}

	switch {
	case kind == dayrecord.KindHolidayWorked || kind == dayrecord.KindHolidayOff:
		if !isHoliday {
			return dayrecord.ErrClassificationAmbiguous
		}
	case kind == dayrecord.KindSundayWorked || kind == dayrecord.KindSundayOff:
		if weekday != time.Sunday {
			return dayrecord.ErrClassificationAmbiguous
		}
	case kind == dayrecord.KindSaturdayWorked || kind == dayrecord.KindSaturdayOff:
		if weekday != time.Saturday {
			return dayrecord.ErrClassificationAmbiguous
		}
	default:
		// Weekday kinds, absences, vacation and half days only apply to
		// regular weekdays.
		if weekday == time.Saturday || weekday == time.Sunday || isHoliday {
			return dayrecord.ErrClassificationAmbiguous
		}
	}

	return nil
}
