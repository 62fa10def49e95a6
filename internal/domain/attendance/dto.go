package attendance

import (
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

type PunchInRequest struct {
	PersonID        string `json:"-"`
	ClientTimestamp string `json:"client_timestamp"` // RFC3339; empty means "now"
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PersonID) {
		errs = append(errs, validator.ValidationError{
			Field:   "person_id",
			Message: "person_id is required",
		})
	}

	if r.ClientTimestamp != "" {
		if _, ok := validator.IsValidDateTime(r.ClientTimestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "client_timestamp",
				Message: "client_timestamp must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PunchOutRequest struct {
	PersonID        string `json:"-"`
	ClientTimestamp string `json:"client_timestamp"` // RFC3339; empty means "now"
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PersonID) {
		errs = append(errs, validator.ValidationError{
			Field:   "person_id",
			Message: "person_id is required",
		})
	}

	if r.ClientTimestamp != "" {
		if _, ok := validator.IsValidDateTime(r.ClientTimestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "client_timestamp",
				Message: "client_timestamp must be an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	PersonID       string   `json:"person_id"`
	PersonName     *string  `json:"person_name,omitempty"`
	Date           string   `json:"date"`
	LifecycleState string   `json:"lifecycle_state"`
	PunchInAt      *string  `json:"punch_in_at,omitempty"`
	PunchOutAt     *string  `json:"punch_out_at,omitempty"`
	ElapsedHours   *float64 `json:"elapsed_hours,omitempty"`
	OvertimeHours  *float64 `json:"overtime_hours,omitempty"`
	Status         string   `json:"status"`
	Regularized    bool     `json:"regularized"`
}

type CurrentSessionResponse struct {
	LifecycleState    string  `json:"lifecycle_state"`
	PunchInAt         *string `json:"punch_in_at,omitempty"`
	ElapsedHoursSoFar float64 `json:"elapsed_hours_so_far"`
}

// ========================================
// REGULARIZATION DTOs
// ========================================

type RegularizeRequest struct {
	PersonID   string `json:"person_id"`
	Date       string `json:"date"` // YYYY-MM-DD
	Reason     string `json:"reason"`
	ApproverID string `json:"-"`
}

func (r *RegularizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PersonID) {
		errs = append(errs, validator.ValidationError{
			Field:   "person_id",
			Message: "person_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "regularization reason is required",
		})
	}

	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RegularizeResponse struct {
	Regularized bool   `json:"regularized"`
	Status      string `json:"status"`
}
