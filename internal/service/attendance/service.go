package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/clock"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	store        attendance.SessionStore
	directory    person.DirectoryRepository
	clock        clock.Clock
	policy       attendance.Policy
	lookbackDays int
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

// punchInstant resolves the instant a punch applies at. The client timestamp
// wins when present (already validated as RFC3339); otherwise the engine
// clock is authoritative.
func (a *AttendanceServiceImpl) punchInstant(clientTimestamp string) time.Time {
	if clientTimestamp != "" {
		if t, ok := validator.IsValidDateTime(clientTimestamp); ok {
			return t.UTC()
		}
	}
	return a.clock.Now().UTC()
}

// PunchIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	p, err := a.directory.GetByID(ctx, req.PersonID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return attendance.SessionResponse{}, person.ErrPersonNotFound
		}
		return attendance.SessionResponse{}, fmt.Errorf("failed to resolve tracked person: %w", err)
	}

	instant := a.punchInstant(req.ClientTimestamp)

	// The calendar day is derived in the person's local civil time, not the
	// server's, so a punch near midnight lands on the right day.
	today := attendance.CivilDateOf(instant, p.Location())

	active, err := a.store.GetActive(ctx, req.PersonID)
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("failed to check for active session: %w", err)
	}
	if active != nil {
		return attendance.SessionResponse{}, attendance.ErrAlreadyActive
	}

	existing, err := a.store.GetByPersonAndDate(ctx, req.PersonID, today)
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("failed to check today's session: %w", err)
	}

	var sess attendance.Session
	switch {
	case existing == nil:
		sess, err = a.store.Create(ctx, attendance.Session{
			PersonID:  req.PersonID,
			Date:      today,
			PunchInAt: &instant,
			State:     attendance.StateActive,
		})
		if err != nil {
			return attendance.SessionResponse{}, fmt.Errorf("failed to create session: %w", err)
		}
	case existing.State == attendance.StateNotStarted:
		// A materialized absence row for today; punching in claims it.
		sess, err = a.store.Activate(ctx, existing.ID, instant)
		if err != nil {
			return attendance.SessionResponse{}, fmt.Errorf("failed to activate session: %w", err)
		}
	case existing.State == attendance.StateActive:
		return attendance.SessionResponse{}, attendance.ErrAlreadyActive
	default:
		// COMPLETED. No transition out of COMPLETED for the same calendar
		// date; server-derived closure is authoritative, client flags are
		// never consulted.
		return attendance.SessionResponse{}, attendance.ErrDayAlreadyClosed
	}

	return a.mapSessionToResponse(sess, p), nil
}

// PunchOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	p, err := a.directory.GetByID(ctx, req.PersonID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return attendance.SessionResponse{}, person.ErrPersonNotFound
		}
		return attendance.SessionResponse{}, fmt.Errorf("failed to resolve tracked person: %w", err)
	}

	active, err := a.store.GetActive(ctx, req.PersonID)
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("failed to get active session: %w", err)
	}
	if active == nil {
		return attendance.SessionResponse{}, attendance.ErrNotActive
	}

	instant := a.punchInstant(req.ClientTimestamp)
	if instant.Before(*active.PunchInAt) {
		return attendance.SessionResponse{}, validator.ValidationErrors{{
			Field:   "client_timestamp",
			Message: "punch-out must not precede punch-in",
		}}
	}

	// Wall-clock difference of the two UTC instants; immune to DST and
	// midnight crossings. The session keeps its punch-in day.
	elapsed := instant.Sub(*active.PunchInAt).Hours()
	if elapsed < p.RequiredHours() {
		return attendance.SessionResponse{}, &attendance.MinimumHoursNotMetError{
			ElapsedHours:  elapsed,
			RequiredHours: p.RequiredHours(),
		}
	}

	sess, err := a.store.Complete(ctx, active.ID, instant)
	if err != nil {
		if errors.Is(err, attendance.ErrNotActive) {
			return attendance.SessionResponse{}, attendance.ErrNotActive
		}
		return attendance.SessionResponse{}, fmt.Errorf("failed to complete session: %w", err)
	}

	return a.mapSessionToResponse(sess, p), nil
}

// CurrentSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CurrentSession(ctx context.Context, personID string) (attendance.CurrentSessionResponse, error) {
	p, err := a.directory.GetByID(ctx, personID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return attendance.CurrentSessionResponse{}, person.ErrPersonNotFound
		}
		return attendance.CurrentSessionResponse{}, fmt.Errorf("failed to resolve tracked person: %w", err)
	}

	now := a.clock.Now().UTC()

	active, err := a.store.GetActive(ctx, personID)
	if err != nil {
		return attendance.CurrentSessionResponse{}, fmt.Errorf("failed to get active session: %w", err)
	}
	if active != nil {
		// Recomputed fresh on every call so a dashboard can tick a live
		// counter.
		return attendance.CurrentSessionResponse{
			LifecycleState:    string(attendance.StateActive),
			PunchInAt:         timePtrToString(active.PunchInAt),
			ElapsedHoursSoFar: active.ElapsedHours(now),
		}, nil
	}

	today := attendance.CivilDateOf(now, p.Location())
	existing, err := a.store.GetByPersonAndDate(ctx, personID, today)
	if err != nil {
		return attendance.CurrentSessionResponse{}, fmt.Errorf("failed to get today's session: %w", err)
	}
	if existing != nil && existing.State == attendance.StateCompleted {
		return attendance.CurrentSessionResponse{
			LifecycleState:    string(attendance.StateCompleted),
			PunchInAt:         timePtrToString(existing.PunchInAt),
			ElapsedHoursSoFar: existing.ElapsedHours(now),
		}, nil
	}

	return attendance.CurrentSessionResponse{
		LifecycleState:    string(attendance.StateNotStarted),
		ElapsedHoursSoFar: 0,
	}, nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, personID string) ([]attendance.SessionResponse, error) {
	p, err := a.directory.GetByID(ctx, personID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return nil, person.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to resolve tracked person: %w", err)
	}

	// Same bounded horizon as the roster; the upper bound reaches one day
	// ahead for timezones ahead of UTC.
	today := attendance.CivilDateOf(a.clock.Now(), time.UTC)
	from := today.AddDate(0, 0, -a.lookbackDays)
	to := today.AddDate(0, 0, 1)

	sessions, err := a.store.ListByPersonAndDateRange(ctx, personID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := make([]attendance.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, a.mapSessionToResponse(sess, p))
	}
	return responses, nil
}

// Regularize implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Regularize(ctx context.Context, req attendance.RegularizeRequest) (attendance.RegularizeResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RegularizeResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)

	sess, err := a.store.Regularize(ctx, req.PersonID, date, req.Reason, req.ApproverID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RegularizeResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.RegularizeResponse{}, fmt.Errorf("failed to regularize session: %w", err)
	}

	p, err := a.directory.GetByID(ctx, req.PersonID)
	if err != nil {
		return attendance.RegularizeResponse{}, fmt.Errorf("failed to resolve tracked person: %w", err)
	}

	return attendance.RegularizeResponse{
		Regularized: true,
		Status:      string(a.deriveStatus(&sess, p)),
	}, nil
}

func (a *AttendanceServiceImpl) deriveStatus(sess *attendance.Session, p person.TrackedPerson) attendance.Status {
	scheduledStart, err := p.ScheduledStartOn(sess.Date)
	if err != nil {
		// An unparsable directory record cannot make someone late.
		scheduledStart = sess.Date
		if sess.PunchInAt != nil {
			scheduledStart = *sess.PunchInAt
		}
	}
	return attendance.DeriveStatus(sess, scheduledStart, p.RequiredHours(), a.policy)
}

func (a *AttendanceServiceImpl) mapSessionToResponse(sess attendance.Session, p person.TrackedPerson) attendance.SessionResponse {
	now := a.clock.Now().UTC()

	resp := attendance.SessionResponse{
		PersonID:       sess.PersonID,
		PersonName:     &p.DisplayName,
		Date:           sess.Date.Format("2006-01-02"),
		LifecycleState: string(sess.State),
		PunchInAt:      timePtrToString(sess.PunchInAt),
		PunchOutAt:     timePtrToString(sess.PunchOutAt),
		Status:         string(a.deriveStatus(&sess, p)),
		Regularized:    sess.Regularized,
	}

	switch sess.State {
	case attendance.StateActive:
		elapsed := sess.ElapsedHours(now)
		resp.ElapsedHours = &elapsed
	case attendance.StateCompleted:
		elapsed := sess.ElapsedHours(now)
		overtime := attendance.OvertimeHours(elapsed, p.RequiredHours())
		resp.ElapsedHours = &elapsed
		resp.OvertimeHours = &overtime
	}

	return resp
}

func NewAttendanceService(
	store attendance.SessionStore,
	directory person.DirectoryRepository,
	clk clock.Clock,
	policy attendance.Policy,
	lookbackDays int,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		store:        store,
		directory:    directory,
		clock:        clk,
		policy:       policy,
		lookbackDays: lookbackDays,
	}
}
