package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/obratech/workforce-backend-go/internal/config"
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"
	"github.com/obratech/workforce-backend-go/internal/repository/postgresql"
	calendarService "github.com/obratech/workforce-backend-go/internal/service/calendar"
	recomputeService "github.com/obratech/workforce-backend-go/internal/service/recompute"
)

const (
	exitOK         = 0
	exitFailedRows = 1
	exitScope      = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		tenantID   = flag.String("tenant", "", "tenant whose day records are recomputed (required)")
		fromArg    = flag.String("from", "", "start date, YYYY-MM-DD (required)")
		toArg      = flag.String("to", "", "end date inclusive, YYYY-MM-DD (required)")
		employeeID = flag.String("employee", "", "restrict the pass to a single employee")
		reason     = flag.String("reason", "manual recompute", "reason recorded on the ledger entry")
	)
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "recompute: --tenant is required")
		return exitScope
	}

	from, err := time.Parse("2006-01-02", *fromArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "recompute: invalid --from:", err)
		return exitFailedRows
	}
	to, err := time.Parse("2006-01-02", *toArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "recompute: invalid --to:", err)
		return exitFailedRows
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "recompute: loading config:", err)
		return exitFailedRows
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Fprintln(os.Stderr, "recompute: connecting to database:", err)
		return exitFailedRows
	}
	defer db.Close()

	dayRecordRepo := postgresql.NewDayRecordRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	passLock := postgresql.NewPassLock(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	calendarSvc := calendarService.NewCalendarService(postgresql.NewHolidayRepository(db))

	svc := recomputeService.NewRecomputeService(
		dayRecordRepo,
		passLock,
		ledgerRepo,
		employeeRepo,
		scheduleRepo,
		calendarSvc,
	).
		WithBudget(cfg.Engine.RecordBudget, cfg.Engine.DiffLimit).
		WithTransactor(func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		})

	scope := dayrecord.RecomputeScope{
		TenantID: *tenantID,
		From:     from,
		To:       to,
	}
	if *employeeID != "" {
		scope.EmployeeID = employeeID
	}

	// The CLI acts on behalf of an operator inside the tenant it names.
	ctx := tenant.WithScope(context.Background(), tenant.Scope{
		TenantID: *tenantID,
		Actor:    "cli:recompute",
	})

	summary, err := svc.Recompute(ctx, scope, *reason)
	if err != nil {
		if errors.Is(err, tenant.ErrScopeViolation) {
			fmt.Fprintln(os.Stderr, "recompute:", err)
			return exitScope
		}
		fmt.Fprintln(os.Stderr, "recompute:", err)
		return exitFailedRows
	}

	fmt.Println(summary.LedgerEntryID)
	fmt.Fprintf(os.Stderr, "examined=%d changed=%d failed=%d partial=%t\n",
		summary.Examined, summary.Changed, summary.Failed, summary.Partial)

	if summary.Failed > 0 || summary.Partial {
		return exitFailedRows
	}
	return exitOK
}
