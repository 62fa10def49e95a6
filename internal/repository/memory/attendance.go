// Package memory provides in-memory implementations of the attendance
// repositories. They honor the same error contract as the PostgreSQL
// implementations and are safe for concurrent use, which makes them suitable
// for tests and local development without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
)

// RegularizationEntry is one appended audit record, mirroring a
// regularization_logs row.
type RegularizationEntry struct {
	SessionID  string
	ApproverID string
	Reason     string
	At         time.Time
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*attendance.Session
	auditLog []RegularizationEntry

	// One lock per person serializes that person's lifecycle transitions,
	// mirroring the row-level guards the database gives us.
	personMu map[string]*sync.Mutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*attendance.Session),
		personMu: make(map[string]*sync.Mutex),
	}
}

func (s *SessionStore) lockPerson(personID string) *sync.Mutex {
	s.mu.Lock()
	mu, ok := s.personMu[personID]
	if !ok {
		mu = &sync.Mutex{}
		s.personMu[personID] = mu
	}
	s.mu.Unlock()
	mu.Lock()
	return mu
}

func sameDay(a, b time.Time) bool {
	return a.Equal(b)
}

// GetActive implements attendance.SessionStore.
func (s *SessionStore) GetActive(ctx context.Context, personID string) (*attendance.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.PersonID == personID && sess.State == attendance.StateActive {
			copied := *sess
			return &copied, nil
		}
	}
	return nil, nil
}

// GetByPersonAndDate implements attendance.SessionStore.
func (s *SessionStore) GetByPersonAndDate(ctx context.Context, personID string, date time.Time) (*attendance.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.PersonID == personID && sameDay(sess.Date, date) {
			copied := *sess
			return &copied, nil
		}
	}
	return nil, nil
}

// Create implements attendance.SessionStore.
func (s *SessionStore) Create(ctx context.Context, newSess attendance.Session) (attendance.Session, error) {
	mu := s.lockPerson(newSess.PersonID)
	defer mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.PersonID != newSess.PersonID {
			continue
		}
		if newSess.State == attendance.StateActive && sess.State == attendance.StateActive {
			return attendance.Session{}, attendance.ErrAlreadyActive
		}
		if sameDay(sess.Date, newSess.Date) {
			return attendance.Session{}, attendance.ErrDayAlreadyClosed
		}
	}

	now := time.Now().UTC()
	newSess.ID = uuid.NewString()
	newSess.CreatedAt = now
	newSess.UpdatedAt = now

	stored := newSess
	s.sessions[stored.ID] = &stored
	return newSess, nil
}

// Activate implements attendance.SessionStore.
func (s *SessionStore) Activate(ctx context.Context, sessionID string, punchInAt time.Time) (attendance.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return attendance.Session{}, attendance.ErrRecordNotFound
	}
	personID := sess.PersonID
	s.mu.Unlock()

	mu := s.lockPerson(personID)
	defer mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok = s.sessions[sessionID]
	if !ok || sess.State != attendance.StateNotStarted {
		return attendance.Session{}, attendance.ErrAlreadyActive
	}

	punchIn := punchInAt
	sess.PunchInAt = &punchIn
	sess.State = attendance.StateActive
	sess.UpdatedAt = time.Now().UTC()

	return *sess, nil
}

// Complete implements attendance.SessionStore.
func (s *SessionStore) Complete(ctx context.Context, sessionID string, punchOutAt time.Time) (attendance.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return attendance.Session{}, attendance.ErrNotActive
	}
	personID := sess.PersonID
	s.mu.Unlock()

	mu := s.lockPerson(personID)
	defer mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok = s.sessions[sessionID]
	if !ok || sess.State != attendance.StateActive {
		return attendance.Session{}, attendance.ErrNotActive
	}

	punchOut := punchOutAt
	sess.PunchOutAt = &punchOut
	sess.State = attendance.StateCompleted
	sess.UpdatedAt = time.Now().UTC()

	return *sess, nil
}

// Regularize implements attendance.SessionStore. The session row keeps only
// the latest reason; every invocation appends an audit entry, matching the
// regularization_logs table.
func (s *SessionStore) Regularize(ctx context.Context, personID string, date time.Time, reason, approverID string) (attendance.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.PersonID == personID && sameDay(sess.Date, date) {
			now := time.Now().UTC()
			sess.Regularized = true
			r := reason
			sess.RegularizationReason = &r
			sess.UpdatedAt = now
			s.auditLog = append(s.auditLog, RegularizationEntry{
				SessionID:  sess.ID,
				ApproverID: approverID,
				Reason:     reason,
				At:         now,
			})
			return *sess, nil
		}
	}
	return attendance.Session{}, attendance.ErrRecordNotFound
}

// RegularizationLog returns the audit entries recorded for a session, oldest
// first.
func (s *SessionStore) RegularizationLog(sessionID string) []RegularizationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []RegularizationEntry
	for _, entry := range s.auditLog {
		if entry.SessionID == sessionID {
			out = append(out, entry)
		}
	}
	return out
}

// ListByPersonAndDateRange implements attendance.SessionStore.
func (s *SessionStore) ListByPersonAndDateRange(ctx context.Context, personID string, from, to time.Time) ([]attendance.Session, error) {
	return s.ListByPersons(ctx, []string{personID}, from, to)
}

// ListByPersons implements attendance.SessionStore. Results are ordered like
// the SQL implementation (date DESC, created_at ASC, id ASC); map iteration
// order must never leak out, or repeated pagination over the same data would
// slice a differently-ordered sequence each call.
func (s *SessionStore) ListByPersons(ctx context.Context, personIDs []string, from, to time.Time) ([]attendance.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(personIDs))
	for _, id := range personIDs {
		wanted[id] = struct{}{}
	}

	var out []attendance.Session
	for _, sess := range s.sessions {
		if _, ok := wanted[sess.PersonID]; !ok {
			continue
		}
		if sess.Date.Before(from) || sess.Date.After(to) {
			continue
		}
		out = append(out, *sess)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}
