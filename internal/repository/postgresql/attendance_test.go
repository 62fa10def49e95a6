package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
)

var sessionRowColumns = []string{
	"id", "person_id", "date", "punch_in_at", "punch_out_at",
	"state", "regularized", "regularization_reason",
	"created_at", "updated_at",
}

func sessionRow(id, personID string, date time.Time, punchIn, punchOut *time.Time, state string) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows(sessionRowColumns).
		AddRow(id, personID, date, punchIn, punchOut, state, false, nil, now, now)
}

func TestSessionStore_GetActive(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	punchIn := date.Add(9 * time.Hour)

	mock.ExpectQuery(`FROM attendance_sessions`).
		WithArgs("person-1").
		WillReturnRows(sessionRow("sess-1", "person-1", date, &punchIn, nil, "ACTIVE"))

	sess, err := store.GetActive(context.Background(), "person-1")
	if err != nil {
		t.Fatalf("GetActive returned error: %v", err)
	}
	if sess == nil || sess.State != attendance.StateActive {
		t.Fatalf("expected ACTIVE session, got %+v", sess)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_GetActive_None(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	mock.ExpectQuery(`FROM attendance_sessions`).
		WithArgs("person-1").
		WillReturnError(pgx.ErrNoRows)

	sess, err := store.GetActive(context.Background(), "person-1")
	if err != nil {
		t.Fatalf("GetActive returned error: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil session, got %+v", sess)
	}
}

func TestSessionStore_Create_UniqueViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "second active session", constraint: "attendance_sessions_one_active", want: attendance.ErrAlreadyActive},
		{name: "duplicate day", constraint: "attendance_sessions_person_date_key", want: attendance.ErrDayAlreadyClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()

			store := NewSessionStore(mock)

			date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
			punchIn := date.Add(9 * time.Hour)

			mock.ExpectQuery(`INSERT INTO attendance_sessions`).
				WithArgs("person-1", date, &punchIn, "ACTIVE").
				WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: tc.constraint})

			_, err = store.Create(context.Background(), attendance.Session{
				PersonID:  "person-1",
				Date:      date,
				PunchInAt: &punchIn,
				State:     attendance.StateActive,
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSessionStore_Activate_AlreadyClaimed(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	punchIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE attendance_sessions`).
		WithArgs("sess-1", punchIn).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Activate(context.Background(), "sess-1", punchIn)
	if !errors.Is(err, attendance.ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}
}

func TestSessionStore_Complete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	punchIn := date.Add(9 * time.Hour)
	punchOut := date.Add(18 * time.Hour)

	mock.ExpectQuery(`UPDATE attendance_sessions`).
		WithArgs("sess-1", punchOut).
		WillReturnRows(sessionRow("sess-1", "person-1", date, &punchIn, &punchOut, "COMPLETED"))

	sess, err := store.Complete(context.Background(), "sess-1", punchOut)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if sess.State != attendance.StateCompleted {
		t.Fatalf("expected COMPLETED, got %s", sess.State)
	}
	if sess.PunchOutAt == nil || !sess.PunchOutAt.Equal(punchOut) {
		t.Fatalf("expected punch-out %v, got %+v", punchOut, sess.PunchOutAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_Complete_NotActive(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	punchOut := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE attendance_sessions`).
		WithArgs("sess-1", punchOut).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Complete(context.Background(), "sess-1", punchOut)
	if !errors.Is(err, attendance.ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
}

func TestSessionStore_Regularize(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	punchIn := date.Add(10 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE attendance_sessions`).
		WithArgs("person-1", date, "train delay").
		WillReturnRows(sessionRow("sess-1", "person-1", date, &punchIn, nil, "ACTIVE"))
	mock.ExpectExec(`INSERT INTO regularization_logs`).
		WithArgs("sess-1", "approver-1", "train delay").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	sess, err := store.Regularize(context.Background(), "person-1", date, "train delay", "approver-1")
	if err != nil {
		t.Fatalf("Regularize returned error: %v", err)
	}
	if sess.ID != "sess-1" {
		t.Fatalf("expected sess-1, got %s", sess.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_Regularize_NoRecord(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE attendance_sessions`).
		WithArgs("person-1", date, "train delay").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err = store.Regularize(context.Background(), "person-1", date, "train delay", "approver-1")
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_ListByPersons(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewSessionStore(mock)

	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	from := day1.AddDate(0, 0, -30)
	to := day2.AddDate(0, 0, 1)
	in1 := day1.Add(9 * time.Hour)
	out1 := day1.Add(18 * time.Hour)
	in2 := day2.Add(9 * time.Hour)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(sessionRowColumns).
		AddRow("sess-2", "person-1", day2, &in2, nil, "ACTIVE", false, nil, now, now).
		AddRow("sess-1", "person-2", day1, &in1, &out1, "COMPLETED", false, nil, now, now)

	mock.ExpectQuery(`person_id = ANY`).
		WithArgs([]string{"person-1", "person-2"}, from, to).
		WillReturnRows(rows)

	sessions, err := store.ListByPersons(context.Background(), []string{"person-1", "person-2"}, from, to)
	if err != nil {
		t.Fatalf("ListByPersons returned error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if !sessions[0].Date.After(sessions[1].Date) {
		t.Fatalf("expected date-descending order, got %v then %v", sessions[0].Date, sessions[1].Date)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
