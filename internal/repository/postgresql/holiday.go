package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/calendar"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepository{db: db}
}

// HasRegion implements calendar.HolidayRepository.
func (r *holidayRepository) HasRegion(ctx context.Context, region string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM holiday_entries WHERE region = $1)`

	var exists bool
	if err := q.QueryRow(ctx, query, region).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check holiday region: %w", err)
	}
	return exists, nil
}

// ListByRange implements calendar.HolidayRepository.
func (r *holidayRepository) ListByRange(ctx context.Context, region string, from, to time.Time) ([]calendar.HolidayEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT region, date, kind, name
		FROM holiday_entries
		WHERE region = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, region, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var entries []calendar.HolidayEntry
	for rows.Next() {
		var e calendar.HolidayEntry
		if err := rows.Scan(&e.Region, &e.Date, &e.Kind, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
