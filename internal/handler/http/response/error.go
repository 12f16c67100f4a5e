package response

import (
	"errors"
	"net/http"

	"github.com/obratech/workforce-backend-go/internal/domain/calendar"
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/domain/employee"
	"github.com/obratech/workforce-backend-go/internal/domain/ledger"
	"github.com/obratech/workforce-backend-go/internal/domain/schedule"
	"github.com/obratech/workforce-backend-go/internal/pkg/tenant"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrScopeViolation):
		Forbidden(w, "Outside your tenant scope")

	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Contract schedule not found")
	case errors.Is(err, ledger.ErrEntryNotFound):
		NotFound(w, "Ledger entry not found")
	case errors.Is(err, dayrecord.ErrDayRecordNotFound):
		NotFound(w, "Day record not found")

	case errors.Is(err, schedule.ErrScheduleIncomplete):
		BadRequest(w, "Contract schedule is incomplete", nil)
	case errors.Is(err, calendar.ErrRegionUnknown):
		BadRequest(w, "No holiday calendar loaded for region", nil)
	case errors.Is(err, dayrecord.ErrClassificationAmbiguous):
		BadRequest(w, "Day kind override contradicts the recorded punches", nil)

	case errors.Is(err, dayrecord.ErrConcurrentRecompute):
		Conflict(w, "A recompute pass is already running for this tenant; retry later")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
