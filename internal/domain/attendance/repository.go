package attendance

import (
	"context"
	"time"
)

// SessionStore holds at most one session per (person, date) and at most one
// ACTIVE session per person. It owns all mutation of session state; business
// policy stays in the service. State-changing updates are guarded by the
// current lifecycle state so racing punches cannot apply twice.
type SessionStore interface {
	// GetActive returns the person's open session, nil when there is none
	GetActive(ctx context.Context, personID string) (*Session, error)

	// GetByPersonAndDate returns the session for the key, nil when absent
	GetByPersonAndDate(ctx context.Context, personID string, date time.Time) (*Session, error)

	// Create inserts a new session in its given state. Returns
	// ErrAlreadyActive when the person already holds an ACTIVE session,
	// ErrDayAlreadyClosed when a session for the key already exists.
	Create(ctx context.Context, sess Session) (Session, error)

	// Activate sets the punch-in instant on an existing NOT_STARTED session.
	// Returns ErrAlreadyActive when the session is no longer NOT_STARTED.
	Activate(ctx context.Context, sessionID string, punchInAt time.Time) (Session, error)

	// Complete sets the punch-out instant and transitions to COMPLETED.
	// Returns ErrNotActive when the session is not ACTIVE, so a racing
	// double punch-out applies at most once.
	Complete(ctx context.Context, sessionID string, punchOutAt time.Time) (Session, error)

	// Regularize marks the keyed session regularized with the latest reason
	// and appends an audit entry; punch instants are never touched. Returns
	// ErrRecordNotFound when no session exists for the key.
	Regularize(ctx context.Context, personID string, date time.Time, reason, approverID string) (Session, error)

	// ListByPersonAndDateRange returns one person's sessions in [from, to]
	ListByPersonAndDateRange(ctx context.Context, personID string, from, to time.Time) ([]Session, error)

	// ListByPersons returns sessions for all given people in [from, to]
	ListByPersons(ctx context.Context, personIDs []string, from, to time.Time) ([]Session, error)
}
