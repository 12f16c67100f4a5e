package calendar

import "errors"

// ErrRegionUnknown is returned when no holiday calendar is loaded for a
// region. Unrecoverable for the affected employee's days; a recompute pass
// records it and continues with other employees.
var ErrRegionUnknown = errors.New("no holiday calendar loaded for region")
