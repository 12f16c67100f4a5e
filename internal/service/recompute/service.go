package recompute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/ledger"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"
	"github.com/obratech/workforce-backend-go/internal/service/timesheet"
	"github.com/oklog/ulid/v2"

	calendarDomain "github.com/obratech/workforce-backend-go/internal/domain/calendar"
)

const (
	defaultRecordBudget = 50 * time.Millisecond
	defaultDiffLimit    = 20

	maxWriteAttempts = 3
	retryBaseDelay   = 100 * time.Millisecond
)

// errStopPass aborts the record stream without failing the pass; the ledger
// entry is marked partial.
var errStopPass = errors.New("pass stopped")

// TxRunner executes fn atomically. The default runs fn directly; main wires
// it to a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type RecomputeServiceImpl struct {
	days      dayrecord.DayRecordRepository
	lock      dayrecord.PassLock
	entries   ledger.LedgerRepository
	employees employee.EmployeeRepository
	schedules schedule.ScheduleRepository
	calendar  calendarDomain.CalendarService
	tx        TxRunner

	recordBudget time.Duration
	diffLimit    int
}

func NewRecomputeService(
	days dayrecord.DayRecordRepository,
	lock dayrecord.PassLock,
	entries ledger.LedgerRepository,
	employees employee.EmployeeRepository,
	schedules schedule.ScheduleRepository,
	calendarService calendarDomain.CalendarService,
) *RecomputeServiceImpl {
	return &RecomputeServiceImpl{
		days:         days,
		lock:         lock,
		entries:      entries,
		employees:    employees,
		schedules:    schedules,
		calendar:     calendarService,
		tx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
		recordBudget: defaultRecordBudget,
		diffLimit:    defaultDiffLimit,
	}
}

// WithTransactor routes multi-record writes through tx, making a revert's
// restores and its ledger entry a single atomic unit.
func (s *RecomputeServiceImpl) WithTransactor(tx TxRunner) *RecomputeServiceImpl {
	if tx != nil {
		s.tx = tx
	}
	return s
}

// WithBudget overrides the per-record deadline budget and the ledger diff cap.
func (s *RecomputeServiceImpl) WithBudget(recordBudget time.Duration, diffLimit int) *RecomputeServiceImpl {
	if recordBudget > 0 {
		s.recordBudget = recordBudget
	}
	if diffLimit > 0 {
		s.diffLimit = diffLimit
	}
	return s
}

// passState accumulates the observable outcome of one pass.
type passState struct {
	entryID  string
	examined int
	changed  int
	failed   int
	partial  bool
	diffs    []ledger.FieldDiff

	// memoized per-pass lookups
	emps   map[string]employee.Employee
	scheds map[string]schedule.ContractSchedule
}

// Recompute implements dayrecord.RecomputeService.
func (s *RecomputeServiceImpl) Recompute(ctx context.Context, scope dayrecord.RecomputeScope, reason string) (dayrecord.PassSummary, error) {
	if err := scope.Validate(); err != nil {
		return dayrecord.PassSummary{}, err
	}

	// Scope authorization fails the pass before any writes.
	caller, err := tenant.FromContext(ctx)
	if err != nil {
		return dayrecord.PassSummary{}, err
	}
	if err := caller.Authorize(scope.TenantID); err != nil {
		return dayrecord.PassSummary{}, err
	}

	acquired, err := s.lock.TryAcquire(ctx, scope.TenantID)
	if err != nil {
		return dayrecord.PassSummary{}, fmt.Errorf("failed to acquire recompute lock: %w", err)
	}
	if !acquired {
		return dayrecord.PassSummary{}, dayrecord.ErrConcurrentRecompute
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), scope.TenantID); err != nil {
			slog.Error("failed to release recompute lock", "tenant_id", scope.TenantID, "error", err)
		}
	}()

	total, err := s.days.CountByScope(ctx, scope)
	if err != nil {
		return dayrecord.PassSummary{}, fmt.Errorf("failed to count records in scope: %w", err)
	}

	// Soft deadline proportional to scope size. Exceeding it flips the pass
	// into partial completion, which is a success for the records touched.
	deadline := s.recordBudget * time.Duration(total)
	if deadline < time.Second {
		deadline = time.Second
	}
	passCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	state := &passState{
		entryID: ulid.Make().String(),
		emps:    make(map[string]employee.Employee),
		scheds:  make(map[string]schedule.ContractSchedule),
	}

	streamErr := s.days.StreamByScope(passCtx, scope, func(rec dayrecord.DayRecord) error {
		if passCtx.Err() != nil {
			state.partial = true
			return errStopPass
		}
		state.examined++
		s.processRecord(passCtx, state, rec)
		return nil
	})
	if streamErr != nil && !errors.Is(streamErr, errStopPass) {
		if errors.Is(streamErr, context.DeadlineExceeded) || errors.Is(streamErr, context.Canceled) {
			state.partial = true
		} else {
			return dayrecord.PassSummary{}, fmt.Errorf("failed to stream records: %w", streamErr)
		}
	}

	entry := ledger.Entry{
		ID:             state.entryID,
		TenantID:       scope.TenantID,
		Actor:          caller.Actor,
		DateFrom:       scope.From,
		DateTo:         scope.To,
		EmployeeFilter: scope.EmployeeID,
		RuleVersion:    timesheet.RuleVersion,
		Reason:         reason,
		Examined:       state.examined,
		Changed:        state.changed,
		Failed:         state.failed,
		Partial:        state.partial,
		Diffs:          state.diffs,
	}
	// The ledger append survives pass cancellation; nothing is silently lost.
	if err := s.withRetry(context.WithoutCancel(ctx), func(c context.Context) error {
		return s.entries.Append(c, entry)
	}); err != nil {
		return dayrecord.PassSummary{}, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	summary := dayrecord.PassSummary{
		LedgerEntryID: state.entryID,
		Examined:      state.examined,
		Changed:       state.changed,
		Failed:        state.failed,
		Partial:       state.partial,
	}

	slog.Info("recompute pass finished",
		"tenant_id", scope.TenantID,
		"ledger_entry_id", summary.LedgerEntryID,
		"examined", summary.Examined,
		"changed", summary.Changed,
		"failed", summary.Failed,
		"partial", summary.Partial,
	)

	return summary, nil
}

// processRecord reclassifies and rewrites a single record. Failures are
// absorbed: the record keeps its previous derived values, gets a last_error
// marker, and the pass moves on.
func (s *RecomputeServiceImpl) processRecord(ctx context.Context, state *passState, rec dayrecord.DayRecord) {
	if rec.RuleVersion > timesheet.RuleVersion {
		s.markFailed(ctx, state, rec, dayrecord.ErrRuleVersionDowngrade)
		return
	}

	emp, sched, err := s.resolveEmployee(ctx, state, rec)
	if err != nil {
		s.markFailed(ctx, state, rec, err)
		return
	}

	isHoliday, err := s.calendar.IsHoliday(ctx, emp.Region, rec.Date)
	if err != nil {
		s.markFailed(ctx, state, rec, err)
		return
	}

	result, err := timesheet.ClassifyAndCompute(rec, sched, isHoliday)
	if err != nil {
		s.markFailed(ctx, state, rec, err)
		return
	}
	if !result.Emitted {
		// Schedule mask no longer covers this stored day; leave it alone.
		return
	}

	diffs := derivedDiffs(rec, result.Record)
	for _, w := range result.Warnings {
		diffs = append(diffs, ledger.FieldDiff{
			EmployeeID: rec.EmployeeID,
			Date:       rec.Date.Format("2006-01-02"),
			Field:      "warning",
			After:      w,
		})
	}
	if len(diffs) == 0 && rec.LastError == nil {
		// Identical derived values: the idempotent no-op case.
		return
	}

	next := result.Record
	next.LedgerEntryID = &state.entryID
	if err := s.withRetry(ctx, func(c context.Context) error {
		return s.days.UpdateDerived(c, next)
	}); err != nil {
		s.markFailed(ctx, state, rec, err)
		return
	}

	state.changed++
	for _, d := range diffs {
		if len(state.diffs) >= s.diffLimit {
			break
		}
		state.diffs = append(state.diffs, d)
	}
}

// resolveEmployee memoizes employee and schedule lookups for the pass.
// An employee without an explicit schedule inherits the tenant default;
// having neither is ErrScheduleIncomplete, never a silent fallback.
func (s *RecomputeServiceImpl) resolveEmployee(ctx context.Context, state *passState, rec dayrecord.DayRecord) (employee.Employee, schedule.ContractSchedule, error) {
	emp, ok := state.emps[rec.EmployeeID]
	if !ok {
		var err error
		emp, err = s.employees.GetByID(ctx, rec.EmployeeID, rec.TenantID)
		if err != nil {
			return employee.Employee{}, schedule.ContractSchedule{}, fmt.Errorf("failed to get employee %s: %w", rec.EmployeeID, err)
		}
		state.emps[rec.EmployeeID] = emp
	}

	sched, ok := state.scheds[rec.EmployeeID]
	if !ok {
		var err error
		sched, err = s.scheduleFor(ctx, emp)
		if err != nil {
			return employee.Employee{}, schedule.ContractSchedule{}, err
		}
		state.scheds[rec.EmployeeID] = sched
	}
	return emp, sched, nil
}

func (s *RecomputeServiceImpl) scheduleFor(ctx context.Context, emp employee.Employee) (schedule.ContractSchedule, error) {
	if emp.ScheduleID != nil {
		sched, err := s.schedules.GetByID(ctx, *emp.ScheduleID, emp.TenantID)
		if err != nil {
			return schedule.ContractSchedule{}, fmt.Errorf("failed to get schedule %s: %w", *emp.ScheduleID, err)
		}
		return sched, nil
	}
	sched, err := s.schedules.GetTenantDefault(ctx, emp.TenantID)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			return schedule.ContractSchedule{}, schedule.ErrScheduleIncomplete
		}
		return schedule.ContractSchedule{}, fmt.Errorf("failed to get tenant default schedule: %w", err)
	}
	return sched, nil
}

// markFailed leaves the record's previous derived values in place and
// records the failure; the next successful recompute clears the marker.
func (s *RecomputeServiceImpl) markFailed(ctx context.Context, state *passState, rec dayrecord.DayRecord, cause error) {
	state.failed++
	state.diffs = appendCapped(state.diffs, s.diffLimit, ledger.FieldDiff{
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date.Format("2006-01-02"),
		Field:      "error",
		After:      cause.Error(),
	})
	if err := s.withRetry(ctx, func(c context.Context) error {
		return s.days.SetLastError(c, rec.ID, rec.TenantID, cause.Error())
	}); err != nil {
		slog.Error("failed to mark day record error",
			"record_id", rec.ID, "tenant_id", rec.TenantID, "error", err)
	}
}

// withRetry retries transient storage failures with exponential backoff.
func (s *RecomputeServiceImpl) withRetry(ctx context.Context, fn func(context.Context) error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if attempt < maxWriteAttempts-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return err
			}
			delay *= 2
		}
	}
	return err
}

// derivedDiffs lists per-field before/after pairs between two versions of a
// record's derived fields.
func derivedDiffs(before, after dayrecord.DayRecord) []ledger.FieldDiff {
	var diffs []ledger.FieldDiff
	date := before.Date.Format("2006-01-02")

	add := func(field, b, a string) {
		if b == a {
			return
		}
		diffs = append(diffs, ledger.FieldDiff{
			EmployeeID: before.EmployeeID,
			Date:       date,
			Field:      field,
			Before:     b,
			After:      a,
		})
	}

	add("kind", string(before.Kind), string(after.Kind))
	add("worked_minutes", strconv.Itoa(before.WorkedMinutes), strconv.Itoa(after.WorkedMinutes))
	add("overtime_minutes", strconv.Itoa(before.OvertimeMinutes), strconv.Itoa(after.OvertimeMinutes))
	add("premium_tier", strconv.Itoa(int(before.PremiumTier)), strconv.Itoa(int(after.PremiumTier)))
	add("tardy_entry_minutes", strconv.Itoa(before.TardyEntryMinutes), strconv.Itoa(after.TardyEntryMinutes))
	add("tardy_exit_minutes", strconv.Itoa(before.TardyExitMinutes), strconv.Itoa(after.TardyExitMinutes))
	add("lost_minutes", strconv.Itoa(before.LostMinutes), strconv.Itoa(after.LostMinutes))

	return diffs
}

func appendCapped(diffs []ledger.FieldDiff, limit int, d ledger.FieldDiff) []ledger.FieldDiff {
	if len(diffs) >= limit {
		return diffs
	}
	return append(diffs, d)
}
