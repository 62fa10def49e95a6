package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A punch-out below the minimum carries the hours worked so the client
	// can show how far short the session fell.
	var minHoursErr *attendance.MinimumHoursNotMetError
	if errors.As(err, &minHoursErr) {
		UnprocessableEntity(w, "MINIMUM_HOURS_NOT_MET", minHoursErr.Error(), map[string]string{
			"elapsed_hours":  fmt.Sprintf("%.2f", minHoursErr.ElapsedHours),
			"required_hours": fmt.Sprintf("%.2f", minHoursErr.RequiredHours),
		})
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyActive):
		Conflict(w, "An attendance session is already active")
	case errors.Is(err, attendance.ErrDayAlreadyClosed):
		Conflict(w, "Attendance for this day is already closed")
	case errors.Is(err, attendance.ErrNotActive):
		Conflict(w, "No active attendance session to punch out of")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Directory errors
	case errors.Is(err, person.ErrPersonNotFound):
		NotFound(w, "Tracked person not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
