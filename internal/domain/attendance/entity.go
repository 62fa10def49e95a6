package attendance

import (
	"time"
)

// LifecycleState is the session state machine:
// NOT_STARTED -> ACTIVE -> COMPLETED. There is no transition out of
// COMPLETED for the same calendar date.
type LifecycleState string

const (
	StateNotStarted LifecycleState = "NOT_STARTED"
	StateActive     LifecycleState = "ACTIVE"
	StateCompleted  LifecycleState = "COMPLETED"
)

// Status classifies a day's attendance. It is derived, never stored.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusAbsent  Status = "absent"
)

// Session is one person's single day's punch-in-to-punch-out record.
type Session struct {
	ID       string
	PersonID string

	// Date is the local civil day the session belongs to. It is pinned at
	// punch-in time and never recomputed from the punch-out instant, so a
	// shift that runs past midnight stays on the day it started.
	Date time.Time

	PunchInAt  *time.Time // UTC instant
	PunchOutAt *time.Time // UTC instant, set iff State == COMPLETED

	State                LifecycleState
	Regularized          bool
	RegularizationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	PersonName *string
}

// CivilDateOf truncates an instant to the calendar day it falls on in loc.
// The result is a date-only value (midnight UTC) usable as a map or SQL key.
func CivilDateOf(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// ElapsedHours measures the wall-clock duration of the session. ACTIVE
// sessions are measured against now on every call; COMPLETED sessions
// against their stored punch-out instant. Instants are compared directly,
// so a session spanning a DST transition or midnight is still the true
// wall-clock difference.
func (s *Session) ElapsedHours(now time.Time) float64 {
	if s == nil || s.PunchInAt == nil {
		return 0
	}
	switch s.State {
	case StateActive:
		return now.Sub(*s.PunchInAt).Hours()
	case StateCompleted:
		return s.PunchOutAt.Sub(*s.PunchInAt).Hours()
	}
	return 0
}

// OvertimeHours is the portion of elapsed beyond the required minimum.
func OvertimeHours(elapsedHours, requiredHours float64) float64 {
	if elapsedHours <= requiredHours {
		return 0
	}
	return elapsedHours - requiredHours
}

// Policy holds the engine-wide status thresholds.
type Policy struct {
	GracePeriod       time.Duration
	HalfDayFloorHours float64
}

// DeriveStatus classifies a session against the person's scheduled start and
// minimum-hours policy. A nil session, or one without a punch-in, is absent;
// callers only ask about dates that have elapsed. Late takes precedence over
// half-day when both apply.
func DeriveStatus(s *Session, scheduledStart time.Time, requiredHours float64, pol Policy) Status {
	if s == nil || s.PunchInAt == nil {
		return StatusAbsent
	}

	if s.PunchInAt.After(scheduledStart.Add(pol.GracePeriod)) {
		return StatusLate
	}

	if s.State == StateCompleted {
		elapsed := s.ElapsedHours(time.Time{})
		if elapsed < requiredHours {
			if elapsed >= pol.HalfDayFloorHours {
				return StatusHalfDay
			}
			return StatusAbsent
		}
	}

	return StatusPresent
}
