package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/kpi"
	"github.com/obratech/workforce-backend-go/internal/domain/ledger"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/obratech/workforce-backend-go/internal/handler/http/response"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"

	calendarDomain "github.com/obratech/workforce-backend-go/internal/domain/calendar"
)

type TimesheetHandler struct {
	recompute  dayrecord.RecomputeService
	aggregator kpi.AggregatorService
	calendar   calendarDomain.CalendarService
	employees  employee.EmployeeRepository
	schedules  schedule.ScheduleRepository
	entries    ledger.LedgerRepository
}

func NewTimesheetHandler(
	recompute dayrecord.RecomputeService,
	aggregator kpi.AggregatorService,
	calendarService calendarDomain.CalendarService,
	employees employee.EmployeeRepository,
	schedules schedule.ScheduleRepository,
	entries ledger.LedgerRepository,
) *TimesheetHandler {
	return &TimesheetHandler{
		recompute:  recompute,
		aggregator: aggregator,
		calendar:   calendarService,
		employees:  employees,
		schedules:  schedules,
		entries:    entries,
	}
}

type recomputeRequest struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Reason     string  `json:"reason"`
}

// Recompute drives a bulk rewrite of derived fields for the caller's tenant.
func (h *TimesheetHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	caller, err := tenant.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req recomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		response.BadRequest(w, "Invalid from date", map[string]string{"from": "expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		response.BadRequest(w, "Invalid to date", map[string]string{"to": "expected YYYY-MM-DD"})
		return
	}

	scope := dayrecord.RecomputeScope{
		TenantID:   caller.TenantID,
		From:       from,
		To:         to,
		EmployeeID: req.EmployeeID,
	}

	summary, err := h.recompute.Recompute(r.Context(), scope, req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// MonthlyKPIs returns the per-employee and tenant rollups for a month.
func (h *TimesheetHandler) MonthlyKPIs(w http.ResponseWriter, r *http.Request) {
	caller, err := tenant.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	employees, total, err := h.aggregator.AggregateMonthly(r.Context(), caller.TenantID, year, month, includeInactive)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"employees": employees,
		"tenant":    total,
	})
}

// HourlyRate exposes the calendar-aware hourly rate for payroll.
func (h *TimesheetHandler) HourlyRate(w http.ResponseWriter, r *http.Request) {
	caller, err := tenant.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	emp, err := h.employees.GetByID(r.Context(), employeeID, caller.TenantID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sched, err := h.scheduleFor(r, emp)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rate, err := h.calendar.HourlyRate(r.Context(), emp, sched, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"employee_id": emp.ID,
		"year":        year,
		"month":       int(month),
		"hourly_rate": rate,
	})
}

// ListLedger returns the tenant's most recent correction ledger entries.
func (h *TimesheetHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	caller, err := tenant.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.entries.List(r.Context(), caller.TenantID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

type revertRequest struct {
	Reason string `json:"reason"`
}

// RevertLedgerEntry rolls derived fields back to a historical entry's
// before-state.
func (h *TimesheetHandler) RevertLedgerEntry(w http.ResponseWriter, r *http.Request) {
	caller, err := tenant.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	entryID := chi.URLParam(r, "id")

	var req revertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	summary, err := h.recompute.RevertEntry(r.Context(), caller.TenantID, entryID, req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Ledger entry reverted", summary)
}

func (h *TimesheetHandler) scheduleFor(r *http.Request, emp employee.Employee) (schedule.ContractSchedule, error) {
	if emp.ScheduleID != nil {
		return h.schedules.GetByID(r.Context(), *emp.ScheduleID, emp.TenantID)
	}
	return h.schedules.GetTenantDefault(r.Context(), emp.TenantID)
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		response.BadRequest(w, "Invalid year", map[string]string{"year": "expected a four-digit year"})
		return 0, 0, false
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		response.BadRequest(w, "Invalid month", map[string]string{"month": "expected 1-12"})
		return 0, 0, false
	}
	return year, time.Month(monthNum), true
}
