package dayrecord

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the classified day kind. It selects which arithmetic rule applies.
type Kind string

const (
	KindWeekdayNormal      Kind = "weekday_normal"
	KindWeekdayPartial     Kind = "weekday_partial"
	KindAbsenceUnjustified Kind = "absence_unjustified"
	KindAbsenceJustified   Kind = "absence_justified"
	KindVacation           Kind = "vacation"
	KindSaturdayWorked     Kind = "saturday_worked"
	KindSaturdayOff        Kind = "saturday_off"
	KindSundayWorked       Kind = "sunday_worked"
	KindSundayOff          Kind = "sunday_off"
	KindHolidayWorked      Kind = "holiday_worked"
	KindHolidayOff         Kind = "holiday_off"
	KindHalfDay            Kind = "half_day"
	KindNoLunchBreak       Kind = "no_lunch_break"
)

var KindValues = []string{
	string(KindWeekdayNormal),
	string(KindWeekdayPartial),
	string(KindAbsenceUnjustified),
	string(KindAbsenceJustified),
	string(KindVacation),
	string(KindSaturdayWorked),
	string(KindSaturdayOff),
	string(KindSundayWorked),
	string(KindSundayOff),
	string(KindHolidayWorked),
	string(KindHolidayOff),
	string(KindHalfDay),
	string(KindNoLunchBreak),
}

// Valid reports whether k is one of the known day kinds.
func (k Kind) Valid() bool {
	return slices.Contains(KindValues, string(k))
}

// IsWeekdayWorked reports whether the kind uses the scheduled-window
// arithmetic (overtime outside the window, tardiness inside it).
func (k Kind) IsWeekdayWorked() bool {
	return k == KindWeekdayNormal || k == KindWeekdayPartial || k == KindNoLunchBreak
}

// IsSpecialWorked reports whether the kind is a worked Saturday, Sunday or
// holiday, where every worked minute is overtime and tardiness is zero.
func (k Kind) IsSpecialWorked() bool {
	return k == KindSaturdayWorked || k == KindSundayWorked || k == KindHolidayWorked
}

// IsAbsence reports whether the kind represents a full missed scheduled day.
func (k Kind) IsAbsence() bool {
	return k == KindAbsenceUnjustified || k == KindAbsenceJustified
}

// IsOff reports whether the day contributes nothing to the KPIs beyond
// headcount denominators.
func (k Kind) IsOff() bool {
	switch k {
	case KindVacation, KindSaturdayOff, KindSundayOff, KindHolidayOff:
		return true
	}
	return false
}

// PremiumTier is the legally mandated overtime multiplier class
// (Brazilian CLT): 50% on weekdays and Saturdays, 100% on Sundays and
// holidays. Modeled as an enumerated tier, not a stored percentage.
type PremiumTier int

const (
	TierNone PremiumTier = 0
	Tier50   PremiumTier = 50
	Tier100  PremiumTier = 100
)

// DayRecord is the per-(employee, date) unit of time accounting.
// Raw punch fields and the override kind are user-entered and never touched
// by a recompute; everything under "derived" is rewritten in bulk.
// All stored time quantities are integer minutes; the hour decimals are
// written once, at the derived-field boundary, with banker's rounding to
// two decimal places.
type DayRecord struct {
	ID         string
	EmployeeID string
	TenantID   string
	Date       time.Time

	// Raw punches, minutes from midnight. Any may be absent.
	EntryMinute       *int
	LunchOutMinute    *int
	LunchReturnMinute *int
	ExitMinute        *int

	// User-provided.
	OverrideKind *Kind
	Note         *string

	// Derived.
	Kind              Kind
	WorkedMinutes     int
	OvertimeMinutes   int
	PremiumTier       PremiumTier
	TardyEntryMinutes int
	TardyExitMinutes  int
	LostMinutes       int
	WorkedHours       decimal.Decimal
	OvertimeHours     decimal.Decimal
	TardyHours        decimal.Decimal
	LostHours         decimal.Decimal

	RuleVersion   int
	Version       int
	LedgerEntryID *string
	LastError     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPunches reports whether any raw punch is present.
func (d DayRecord) HasPunches() bool {
	return d.EntryMinute != nil || d.LunchOutMinute != nil ||
		d.LunchReturnMinute != nil || d.ExitMinute != nil
}

// HasLunchPair reports whether both lunch punches are present.
func (d DayRecord) HasLunchPair() bool {
	return d.LunchOutMinute != nil && d.LunchReturnMinute != nil
}

// TardyMinutes is the total unattended scheduled time for the day.
func (d DayRecord) TardyMinutes() int {
	return d.TardyEntryMinutes + d.TardyExitMinutes
}
