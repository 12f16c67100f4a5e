package schedule

import "time"

// ContractSchedule is an employee's contractual working-time definition.
// All times are integer minutes from midnight; duration fields are integer
// minutes. Hour values are derived elsewhere, never stored here.
type ContractSchedule struct {
	ID                  string
	TenantID            string
	Name                string
	EntryMinute         int
	ExitMinute          int
	LunchOutMinute      *int
	LunchReturnMinute   *int
	WeekdayMask         WeekdayMask
	PlannedDailyMinutes int
	IsDefault           bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// WeekdayMask marks which weekdays are scheduled working days.
// Index 0 is Monday, index 6 is Sunday.
type WeekdayMask [7]bool

func (m WeekdayMask) WorksOn(d time.Weekday) bool {
	if d == time.Sunday {
		return m[6]
	}
	return m[int(d)-1]
}

// Bits encodes the mask as an integer (Monday = bit 0) for storage.
func (m WeekdayMask) Bits() int {
	bits := 0
	for i, on := range m {
		if on {
			bits |= 1 << i
		}
	}
	return bits
}

func MaskFromBits(bits int) WeekdayMask {
	var m WeekdayMask
	for i := range m {
		m[i] = bits&(1<<i) != 0
	}
	return m
}

// MondayToFriday is the common construction-crew mask.
var MondayToFriday = WeekdayMask{true, true, true, true, true, false, false}

// HasLunchWindow reports whether the schedule defines a planned lunch break.
func (s ContractSchedule) HasLunchWindow() bool {
	return s.LunchOutMinute != nil && s.LunchReturnMinute != nil
}

// PlannedLunchMinutes returns the planned lunch length, zero when the
// schedule has no lunch window.
func (s ContractSchedule) PlannedLunchMinutes() int {
	if !s.HasLunchWindow() {
		return 0
	}
	return *s.LunchReturnMinute - *s.LunchOutMinute
}

// Complete reports whether the schedule carries the fields weekday
// arithmetic needs.
func (s ContractSchedule) Complete() bool {
	return s.ExitMinute > s.EntryMinute && s.PlannedDailyMinutes > 0 && s.PlannedDailyMinutes <= 24*60
}
