package timesheet

import (
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// MinutesToHours converts integer minutes to hours at two decimal places
// with banker's rounding. This is the only place minutes become hours; all
// intermediate arithmetic stays in integer minutes.
func MinutesToHours(m int) decimal.Decimal {
	return decimal.New(int64(m), 0).Div(sixty).RoundBank(2)
}

// Result is the outcome of classifying and computing one day.
type Result struct {
	Record dayrecord.DayRecord
	// Emitted is false when the day produces no record (outside the weekday
	// mask with no punches).
	Emitted bool
	// Warnings flag anomalies that were absorbed rather than failed, e.g. a
	// negative worked duration stored as zero. They end up in the ledger.
	Warnings []string
}

// ClassifyAndCompute classifies the day and populates every derived field.
// Pure, idempotent, no I/O. Raw punch fields and the override are read,
// never written.
func ClassifyAndCompute(rec dayrecord.DayRecord, sched schedule.ContractSchedule, isHoliday bool) (Result, error) {
	kind, emitted, err := Classify(rec, sched, isHoliday)
	if err != nil {
		return Result{}, err
	}
	if !emitted {
		return Result{Record: rec}, nil
	}
	rec.Kind = kind
	return Compute(rec, sched)
}

// Compute populates the derived fields of an already classified record.
func Compute(rec dayrecord.DayRecord, sched schedule.ContractSchedule) (Result, error) {
	rec.WorkedMinutes = 0
	rec.OvertimeMinutes = 0
	rec.PremiumTier = dayrecord.TierNone
	rec.TardyEntryMinutes = 0
	rec.TardyExitMinutes = 0
	rec.LostMinutes = 0

	var warnings []string

	switch {
	case rec.Kind.IsWeekdayWorked():
		if !sched.Complete() {
			return Result{}, schedule.ErrScheduleIncomplete
		}
		warnings = computeWeekday(&rec, sched)

	case rec.Kind.IsSpecialWorked():
		warnings = computeSpecial(&rec)

	case rec.Kind.IsAbsence():
		rec.LostMinutes = sched.PlannedDailyMinutes

	case rec.Kind == dayrecord.KindHalfDay:
		rec.WorkedMinutes = sched.PlannedDailyMinutes / 2
		rec.LostMinutes = sched.PlannedDailyMinutes - rec.WorkedMinutes

	default:
		// vacation and the *_off kinds: everything stays zero.
	}

	rec.WorkedHours = MinutesToHours(rec.WorkedMinutes)
	rec.OvertimeHours = MinutesToHours(rec.OvertimeMinutes)
	rec.TardyHours = MinutesToHours(rec.TardyMinutes())
	rec.LostHours = MinutesToHours(rec.LostMinutes)
	rec.RuleVersion = RuleVersion

	return Result{Record: rec, Emitted: true, Warnings: warnings}, nil
}

// computeWeekday applies the scheduled-window rules. Overtime and tardiness
// are mutually exclusive per punch edge: minutes before the scheduled entry
// are overtime credit, minutes after it are tardiness debit, never both.
func computeWeekday(rec *dayrecord.DayRecord, sched schedule.ContractSchedule) []string {
	var warnings []string

	lunch := 0
	if rec.HasLunchPair() {
		lunch = *rec.LunchReturnMinute - *rec.LunchOutMinute
	} else if rec.Kind == dayrecord.KindWeekdayNormal {
		lunch = sched.PlannedLunchMinutes()
	}

	worked := 0
	switch {
	case rec.EntryMinute != nil && rec.ExitMinute != nil:
		worked = *rec.ExitMinute - *rec.EntryMinute - lunch
	case rec.EntryMinute != nil && rec.LunchOutMinute != nil:
		// Exit never punched; only the morning half is attested.
		worked = *rec.LunchOutMinute - *rec.EntryMinute
	case rec.LunchReturnMinute != nil && rec.ExitMinute != nil:
		worked = *rec.ExitMinute - *rec.LunchReturnMinute
	}
	if worked < 0 {
		warnings = append(warnings, "derived negative worked minutes; stored zero")
		worked = 0
	}
	rec.WorkedMinutes = worked

	overtime := 0
	if rec.EntryMinute != nil {
		if *rec.EntryMinute < sched.EntryMinute {
			overtime += sched.EntryMinute - *rec.EntryMinute
		} else {
			rec.TardyEntryMinutes = *rec.EntryMinute - sched.EntryMinute
		}
	}
	if rec.ExitMinute != nil {
		if *rec.ExitMinute > sched.ExitMinute {
			overtime += *rec.ExitMinute - sched.ExitMinute
		} else {
			rec.TardyExitMinutes = sched.ExitMinute - *rec.ExitMinute
		}
	}

	rec.OvertimeMinutes = overtime
	if overtime > 0 {
		rec.PremiumTier = dayrecord.Tier50
	}
	rec.LostMinutes = rec.TardyMinutes()

	return warnings
}

// computeSpecial applies the worked Saturday/Sunday/holiday rule: every
// worked minute is overtime, the premium is the kind's hallmark and not a
// threshold, and tardiness is always zero.
func computeSpecial(rec *dayrecord.DayRecord) []string {
	var warnings []string

	worked := 0
	if rec.EntryMinute != nil && rec.ExitMinute != nil {
		worked = *rec.ExitMinute - *rec.EntryMinute
		if rec.HasLunchPair() {
			worked -= *rec.LunchReturnMinute - *rec.LunchOutMinute
		}
	}
	if worked < 0 {
		warnings = append(warnings, "derived negative worked minutes; stored zero")
		worked = 0
	}

	rec.WorkedMinutes = worked
	rec.OvertimeMinutes = worked
	if rec.Kind == dayrecord.KindSaturdayWorked {
		rec.PremiumTier = dayrecord.Tier50
	} else {
		rec.PremiumTier = dayrecord.Tier100
	}

	return warnings
}
