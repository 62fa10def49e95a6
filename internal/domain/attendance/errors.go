package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors. All are recoverable and surfaced to the caller;
// a rejected transition leaves the session exactly as it was.
var (
	// Punch-in errors
	ErrAlreadyActive    = errors.New("an attendance session is already active")
	ErrDayAlreadyClosed = errors.New("attendance for today is already completed")

	// Punch-out errors
	ErrNotActive = errors.New("no active attendance session")

	// Regularization errors
	ErrRecordNotFound = errors.New("attendance record not found")
)

// MinimumHoursNotMetError is returned when a punch-out is attempted before
// the required threshold. It carries the elapsed hours so the caller can
// display the shortfall.
type MinimumHoursNotMetError struct {
	ElapsedHours  float64
	RequiredHours float64
}

func (e *MinimumHoursNotMetError) Error() string {
	return fmt.Sprintf("minimum hours not met: %.2f of %.2f worked", e.ElapsedHours, e.RequiredHours)
}
