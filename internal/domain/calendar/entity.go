package calendar

import "time"

type HolidayKind string

const (
	HolidayNational  HolidayKind = "national"
	HolidayState     HolidayKind = "state"
	HolidayMunicipal HolidayKind = "municipal"
)

// HolidayEntry is one regional holiday. Read-only to this system; the
// calendar is curated elsewhere.
type HolidayEntry struct {
	Region string
	Date   time.Time
	Kind   HolidayKind
	Name   *string
}
