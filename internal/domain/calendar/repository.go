package calendar

import (
	"context"
	"time"
)

// HolidayRepository defines read access to the holiday calendar table.
type HolidayRepository interface {
	// HasRegion reports whether any calendar entries exist for the region.
	HasRegion(ctx context.Context, region string) (bool, error)

	// ListByRange returns holiday entries for region with date in [from, to].
	ListByRange(ctx context.Context, region string, from, to time.Time) ([]HolidayEntry, error)
}
