package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/database"
)

const uniqueViolationCode = "23505"

const sessionColumns = `
	id, person_id, date, punch_in_at, punch_out_at,
	state, regularized, regularization_reason,
	created_at, updated_at
`

type sessionStore struct {
	db database.Beginner
}

func scanSession(row pgx.Row) (attendance.Session, error) {
	var sess attendance.Session
	var state string
	err := row.Scan(
		&sess.ID, &sess.PersonID, &sess.Date, &sess.PunchInAt, &sess.PunchOutAt,
		&state, &sess.Regularized, &sess.RegularizationReason,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return attendance.Session{}, err
	}
	sess.State = attendance.LifecycleState(state)
	return sess, nil
}

// GetActive implements attendance.SessionStore.
func (s *sessionStore) GetActive(ctx context.Context, personID string) (*attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE person_id = $1
		  AND state = 'ACTIVE'
		LIMIT 1
	`

	sess, err := scanSession(q.QueryRow(ctx, query, personID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	return &sess, nil
}

// GetByPersonAndDate implements attendance.SessionStore.
func (s *sessionStore) GetByPersonAndDate(ctx context.Context, personID string, date time.Time) (*attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE person_id = $1
		  AND date = $2
		LIMIT 1
	`

	sess, err := scanSession(q.QueryRow(ctx, query, personID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by person and date: %w", err)
	}

	return &sess, nil
}

// Create implements attendance.SessionStore. Uniqueness of the
// (person, date) key and of the single ACTIVE session per person is enforced
// by the database, so racing punch-ins collapse to one row.
func (s *sessionStore) Create(ctx context.Context, newSess attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO attendance_sessions (
			person_id, date, punch_in_at, state
		) VALUES (
			$1, $2, $3, $4
		) RETURNING ` + sessionColumns

	sess, err := scanSession(q.QueryRow(ctx, query,
		newSess.PersonID,
		newSess.Date,
		newSess.PunchInAt,
		string(newSess.State),
	))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			if strings.Contains(pgErr.ConstraintName, "one_active") {
				return attendance.Session{}, attendance.ErrAlreadyActive
			}
			return attendance.Session{}, attendance.ErrDayAlreadyClosed
		}
		return attendance.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Activate implements attendance.SessionStore. The state guard in the WHERE
// clause is the compare-and-swap: a session that is no longer NOT_STARTED is
// left untouched.
func (s *sessionStore) Activate(ctx context.Context, sessionID string, punchInAt time.Time) (attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE attendance_sessions
		SET punch_in_at = $2,
		    state = 'ACTIVE',
		    updated_at = NOW()
		WHERE id = $1
		  AND state = 'NOT_STARTED'
		RETURNING ` + sessionColumns

	sess, err := scanSession(q.QueryRow(ctx, query, sessionID, punchInAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrAlreadyActive
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Session{}, attendance.ErrAlreadyActive
		}
		return attendance.Session{}, fmt.Errorf("failed to activate session: %w", err)
	}

	return sess, nil
}

// Complete implements attendance.SessionStore. Guarded on ACTIVE so a racing
// double punch-out cannot record hours twice.
func (s *sessionStore) Complete(ctx context.Context, sessionID string, punchOutAt time.Time) (attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE attendance_sessions
		SET punch_out_at = $2,
		    state = 'COMPLETED',
		    updated_at = NOW()
		WHERE id = $1
		  AND state = 'ACTIVE'
		RETURNING ` + sessionColumns

	sess, err := scanSession(q.QueryRow(ctx, query, sessionID, punchOutAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrNotActive
		}
		return attendance.Session{}, fmt.Errorf("failed to complete session: %w", err)
	}

	return sess, nil
}

// Regularize implements attendance.SessionStore. The session row keeps only
// the latest reason; every invocation appends to regularization_logs so the
// audit trail is cumulative.
func (s *sessionStore) Regularize(ctx context.Context, personID string, date time.Time, reason, approverID string) (attendance.Session, error) {
	var sess attendance.Session

	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		query := `
			UPDATE attendance_sessions
			SET regularized = TRUE,
			    regularization_reason = $3,
			    updated_at = NOW()
			WHERE person_id = $1
			  AND date = $2
			RETURNING ` + sessionColumns

		var err error
		sess, err = scanSession(q.QueryRow(ctx, query, personID, date, reason))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.ErrRecordNotFound
			}
			return fmt.Errorf("failed to update session: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO regularization_logs (session_id, approver_id, reason)
			VALUES ($1, $2, $3)
		`, sess.ID, approverID, reason)
		if err != nil {
			return fmt.Errorf("failed to append regularization log: %w", err)
		}

		return nil
	})
	if err != nil {
		return attendance.Session{}, err
	}

	return sess, nil
}

// ListByPersonAndDateRange implements attendance.SessionStore.
func (s *sessionStore) ListByPersonAndDateRange(ctx context.Context, personID string, from, to time.Time) ([]attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE person_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date DESC, created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, personID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListByPersons implements attendance.SessionStore.
func (s *sessionStore) ListByPersons(ctx context.Context, personIDs []string, from, to time.Time) ([]attendance.Session, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE person_id = ANY($1)
		  AND date >= $2
		  AND date <= $3
		ORDER BY date DESC, created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, personIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]attendance.Session, error) {
	var sessions []attendance.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

func NewSessionStore(db database.Beginner) attendance.SessionStore {
	return &sessionStore{db: db}
}
