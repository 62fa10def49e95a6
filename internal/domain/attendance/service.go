package attendance

import (
	"context"
)

// AttendanceService is the state machine over the session store: it
// validates punch requests against policy and current state, and computes
// the derived fields callers display.
type AttendanceService interface {
	// PunchIn opens today's session for the person
	PunchIn(ctx context.Context, req PunchInRequest) (SessionResponse, error)

	// PunchOut closes the person's active session, enforcing the
	// minimum-hours policy
	PunchOut(ctx context.Context, req PunchOutRequest) (SessionResponse, error)

	// CurrentSession reports live state for dashboard polling; elapsed hours
	// are recomputed on every call for an active session
	CurrentSession(ctx context.Context, personID string) (CurrentSessionResponse, error)

	// History lists the person's own sessions over the lookback window,
	// most recent first
	History(ctx context.Context, personID string) ([]SessionResponse, error)

	// Regularize attaches a supervisor justification to an existing record
	// without altering its punch timestamps
	Regularize(ctx context.Context, req RegularizeRequest) (RegularizeResponse, error)
}
