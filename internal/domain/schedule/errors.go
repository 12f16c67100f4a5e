package schedule

import "errors"

var (
	ErrScheduleNotFound = errors.New("contract schedule not found")

	// ErrScheduleIncomplete is returned when weekday arithmetic is requested
	// for an employee whose schedule lacks planned entry/exit times, or when
	// neither an explicit schedule nor a tenant default exists. There is no
	// silent fallback entry time.
	ErrScheduleIncomplete = errors.New("contract schedule is missing planned entry/exit times")
)
