package recompute

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/ledger"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"
	"github.com/obratech/workforce-backend-go/internal/service/timesheet"
	"github.com/oklog/ulid/v2"
)

// RevertEntry implements dayrecord.RecomputeService.
//
// It re-applies the before-state captured in a historical ledger entry's
// diff. Only the fields the diff recorded are restored; the historical entry
// itself is never modified. Used when a misconfigured rule change has
// propagated and the affected records must be rolled back while the rule is
// fixed.
func (s *RecomputeServiceImpl) RevertEntry(ctx context.Context, tenantID string, entryID string, reason string) (dayrecord.PassSummary, error) {
	caller, err := tenant.FromContext(ctx)
	if err != nil {
		return dayrecord.PassSummary{}, err
	}
	if err := caller.Authorize(tenantID); err != nil {
		return dayrecord.PassSummary{}, err
	}

	acquired, err := s.lock.TryAcquire(ctx, tenantID)
	if err != nil {
		return dayrecord.PassSummary{}, fmt.Errorf("failed to acquire recompute lock: %w", err)
	}
	if !acquired {
		return dayrecord.PassSummary{}, dayrecord.ErrConcurrentRecompute
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), tenantID); err != nil {
			slog.Error("failed to release recompute lock", "tenant_id", tenantID, "error", err)
		}
	}()

	entry, err := s.entries.GetByID(ctx, entryID, tenantID)
	if err != nil {
		return dayrecord.PassSummary{}, fmt.Errorf("failed to load ledger entry %s: %w", entryID, err)
	}

	// Group the restorable diffs per record.
	type recordKey struct {
		employeeID string
		date       string
	}
	grouped := make(map[recordKey][]ledger.FieldDiff)
	var order []recordKey
	for _, d := range entry.Diffs {
		if d.Field == "warning" || d.Field == "error" {
			continue
		}
		k := recordKey{employeeID: d.EmployeeID, date: d.Date}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], d)
	}

	newEntryID := ulid.Make().String()
	state := &passState{entryID: newEntryID}

	// Restores and the revert's own ledger entry commit or roll back as one
	// unit; a revert never leaves partially restored records behind.
	txErr := s.tx(context.WithoutCancel(ctx), func(txCtx context.Context) error {
		for _, k := range order {
			state.examined++

			date, err := time.Parse("2006-01-02", k.date)
			if err != nil {
				state.failed++
				continue
			}

			rec, err := s.days.GetByEmployeeAndDate(txCtx, k.employeeID, date, tenantID)
			if err != nil || rec == nil {
				state.failed++
				continue
			}

			restored := *rec
			for _, d := range grouped[k] {
				applyBefore(&restored, d)
			}
			restored.WorkedHours = timesheet.MinutesToHours(restored.WorkedMinutes)
			restored.OvertimeHours = timesheet.MinutesToHours(restored.OvertimeMinutes)
			restored.TardyHours = timesheet.MinutesToHours(restored.TardyMinutes())
			restored.LostHours = timesheet.MinutesToHours(restored.LostMinutes)
			restored.LedgerEntryID = &newEntryID

			diffs := derivedDiffs(*rec, restored)
			if len(diffs) == 0 {
				continue
			}

			if err := s.days.UpdateDerived(txCtx, restored); err != nil {
				return fmt.Errorf("failed to restore record for employee %s on %s: %w", k.employeeID, k.date, err)
			}

			state.changed++
			for _, d := range diffs {
				state.diffs = appendCapped(state.diffs, s.diffLimit, d)
			}
		}

		return s.entries.Append(txCtx, ledger.Entry{
			ID:          newEntryID,
			TenantID:    tenantID,
			Actor:       caller.Actor,
			DateFrom:    entry.DateFrom,
			DateTo:      entry.DateTo,
			RuleVersion: timesheet.RuleVersion,
			Reason:      fmt.Sprintf("revert of %s: %s", entryID, reason),
			Examined:    state.examined,
			Changed:     state.changed,
			Failed:      state.failed,
			Diffs:       state.diffs,
		})
	})
	if txErr != nil {
		return dayrecord.PassSummary{}, fmt.Errorf("revert of entry %s failed: %w", entryID, txErr)
	}

	return dayrecord.PassSummary{
		LedgerEntryID: newEntryID,
		Examined:      state.examined,
		Changed:       state.changed,
		Failed:        state.failed,
	}, nil
}

// applyBefore restores one diffed derived field to its recorded before-value.
func applyBefore(rec *dayrecord.DayRecord, d ledger.FieldDiff) {
	atoi := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}
	switch d.Field {
	case "kind":
		rec.Kind = dayrecord.Kind(d.Before)
	case "worked_minutes":
		rec.WorkedMinutes = atoi(d.Before)
	case "overtime_minutes":
		rec.OvertimeMinutes = atoi(d.Before)
	case "premium_tier":
		rec.PremiumTier = dayrecord.PremiumTier(atoi(d.Before))
	case "tardy_entry_minutes":
		rec.TardyEntryMinutes = atoi(d.Before)
	case "tardy_exit_minutes":
		rec.TardyExitMinutes = atoi(d.Before)
	case "lost_minutes":
		rec.LostMinutes = atoi(d.Before)
	}
}
