package roster

import (
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	SupervisorID string   `json:"-"`
	PersonIDs    []string `json:"person_ids,omitempty"` // empty means the whole roster
	PageIndex    int      `json:"page"`                 // 0-indexed
	PageSize     int      `json:"page_size"`
}

func (r *PageRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PageIndex < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must not be negative",
		})
	}

	if r.PageSize < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must not be negative",
		})
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: "page_size must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Record is one attendance session joined with directory display data.
type Record struct {
	PersonID      string   `json:"person_id"`
	DisplayName   string   `json:"display_name"`
	Date          string   `json:"date"`
	PunchInAt     *string  `json:"punch_in_at,omitempty"`
	PunchOutAt    *string  `json:"punch_out_at,omitempty"`
	ElapsedHours  *float64 `json:"elapsed_hours,omitempty"`
	OvertimeHours *float64 `json:"overtime_hours,omitempty"`
	Status        string   `json:"status"`
	Regularized   bool     `json:"regularized"`
}

// Page is a date-descending slice of the roster's history.
type Page struct {
	Records    []Record `json:"records"`
	PageIndex  int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
}
