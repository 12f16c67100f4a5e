package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/obratech/workforce-backend-go/internal/config"
	appHTTP "github.com/obratech/workforce-backend-go/internal/handler/http"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
	"github.com/obratech/workforce-backend-go/internal/repository/postgresql"
	calendarService "github.com/obratech/workforce-backend-go/internal/service/calendar"
	kpiService "github.com/obratech/workforce-backend-go/internal/service/kpi"
	recomputeService "github.com/obratech/workforce-backend-go/internal/service/recompute"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	dayRecordRepo := postgresql.NewDayRecordRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	passLock := postgresql.NewPassLock(db)

	calendarSvc := calendarService.NewCalendarService(holidayRepo)
	recomputeSvc := recomputeService.NewRecomputeService(
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
	aggregatorSvc := kpiService.NewAggregatorService(
		employeeRepo,
		scheduleRepo,
		dayRecordRepo,
		calendarSvc,
	)

	ja := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	timesheetHandler := appHTTP.NewTimesheetHandler(
		recomputeSvc,
		aggregatorSvc,
		calendarSvc,
		employeeRepo,
		scheduleRepo,
		ledgerRepo,
	)

	router := appHTTP.NewRouter(ja, timesheetHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
