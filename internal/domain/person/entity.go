package person

import (
	"fmt"
	"time"

	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
)

// DefaultMinRequiredHours applies when the directory record carries no
// per-person policy.
const DefaultMinRequiredHours = 8.0

// TrackedPerson is the engine's view of a directory record: identity,
// display data, and the attendance policy attached to the person. The
// directory owns the record; the engine only reads it.
type TrackedPerson struct {
	ID               string
	DisplayName      string
	ScheduledStart   string // "HH:MM" in the person's local time
	MinRequiredHours float64
	Timezone         string // IANA name, e.g. "Asia/Jakarta"
	SupervisorID     *string
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Location resolves the person's timezone, falling back to UTC when the
// directory holds an unknown name.
func (p TrackedPerson) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequiredHours returns the person's minimum-hours policy with the default
// applied.
func (p TrackedPerson) RequiredHours() float64 {
	if p.MinRequiredHours <= 0 {
		return DefaultMinRequiredHours
	}
	return p.MinRequiredHours
}

// ScheduledStartOn places the person's scheduled start time-of-day onto the
// given calendar date, in the person's local time.
func (p TrackedPerson) ScheduledStartOn(date time.Time) (time.Time, error) {
	if !validator.IsValidTimeOfDay(p.ScheduledStart) {
		return time.Time{}, fmt.Errorf("invalid scheduled start %q", p.ScheduledStart)
	}
	tod, _ := time.Parse("15:04", p.ScheduledStart)
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		tod.Hour(), tod.Minute(), 0, 0,
		p.Location(),
	), nil
}
