package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/clock"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
	"github.com/worktrack-hq/attendance-backend-go/internal/repository/memory"
)

const testPersonID = "0195e3a4-0000-7000-8000-000000000001"

var testPolicy = attendance.Policy{
	GracePeriod:       15 * time.Minute,
	HalfDayFloorHours: 4,
}

func newTestService(t *testing.T) (attendance.AttendanceService, *memory.SessionStore, *clock.Fixed) {
	t.Helper()

	store := memory.NewSessionStore()
	directory := memory.NewDirectory(person.TrackedPerson{
		ID:               testPersonID,
		DisplayName:      "Asha Rao",
		ScheduledStart:   "09:00",
		MinRequiredHours: 8,
		Timezone:         "UTC",
		Active:           true,
	})
	clk := &clock.Fixed{Instant: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}

	return NewAttendanceService(store, directory, clk, testPolicy, 30), store, clk
}

func TestPunchIn_StartsSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StateActive), resp.LifecycleState)
	assert.Equal(t, "2026-03-02", resp.Date)
	require.NotNil(t, resp.PunchInAt)
	assert.Equal(t, "2026-03-02T09:00:00Z", *resp.PunchInAt)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
}

func TestPunchIn_RejectsSecondPunch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	_, err = svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	assert.ErrorIs(t, err, attendance.ErrAlreadyActive)
}

func TestPunchIn_UnknownPerson(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{PersonID: "0195e3a4-0000-7000-8000-00000000dead"})
	assert.ErrorIs(t, err, person.ErrPersonNotFound)
}

func TestPunchOut_BelowMinimumHours(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	// Punch in 09:00, attempt punch out at 12:00: 3 hours worked.
	_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	clk.Advance(3 * time.Hour)
	_, err = svc.PunchOut(ctx, attendance.PunchOutRequest{PersonID: testPersonID})

	var minErr *attendance.MinimumHoursNotMetError
	require.ErrorAs(t, err, &minErr)
	assert.InDelta(t, 3.0, minErr.ElapsedHours, 0.0001)
	assert.InDelta(t, 8.0, minErr.RequiredHours, 0.0001)

	// The session is still active and can be closed later.
	current, err := svc.CurrentSession(ctx, testPersonID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateActive), current.LifecycleState)
}

func TestPunchOut_CompletesWithOvertime(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	// Punch in 09:00, punch out 18:00: 9 elapsed, 1 overtime.
	_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	clk.Advance(9 * time.Hour)
	resp, err := svc.PunchOut(ctx, attendance.PunchOutRequest{PersonID: testPersonID})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StateCompleted), resp.LifecycleState)
	require.NotNil(t, resp.ElapsedHours)
	assert.InDelta(t, 9.0, *resp.ElapsedHours, 0.0001)
	require.NotNil(t, resp.OvertimeHours)
	assert.InDelta(t, 1.0, *resp.OvertimeHours, 0.0001)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
}

func TestPunchOut_WithoutActiveSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.PunchOut(context.Background(), attendance.PunchOutRequest{PersonID: testPersonID})
	assert.ErrorIs(t, err, attendance.ErrNotActive)
}

func TestPunchOut_RejectsInstantBeforePunchIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	_, err = svc.PunchOut(ctx, attendance.PunchOutRequest{
		PersonID:        testPersonID,
		ClientTimestamp: "2026-03-02T08:00:00Z",
	})

	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestPunchIn_SameDayAfterCompletion(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)
	clk.Advance(8 * time.Hour)
	_, err = svc.PunchOut(ctx, attendance.PunchOutRequest{PersonID: testPersonID})
	require.NoError(t, err)

	// Same calendar day: the closed record is final.
	clk.Advance(time.Hour)
	_, err = svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	assert.ErrorIs(t, err, attendance.ErrDayAlreadyClosed)

	// Next day punches in fresh.
	clk.Advance(16 * time.Hour)
	resp, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", resp.Date)
}

func TestPunchIn_ClaimsMaterializedAbsenceRow(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// An absence row for today already exists, as the materialization job
	// would have left it.
	_, err := store.Create(ctx, attendance.Session{
		PersonID: testPersonID,
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		State:    attendance.StateNotStarted,
	})
	require.NoError(t, err)

	resp, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateActive), resp.LifecycleState)
	assert.Equal(t, "2026-03-02", resp.Date)
}

func TestPunchIn_ClientTimestampWins(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.PunchIn(ctx, attendance.PunchInRequest{
		PersonID:        testPersonID,
		ClientTimestamp: "2026-03-02T08:30:00Z",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.PunchInAt)
	assert.Equal(t, "2026-03-02T08:30:00Z", *resp.PunchInAt)
}

func TestCurrentSession_LiveElapsed(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	current, err := svc.CurrentSession(ctx, testPersonID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateNotStarted), current.LifecycleState)
	assert.Zero(t, current.ElapsedHoursSoFar)

	_, err = svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	current, err = svc.CurrentSession(ctx, testPersonID)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateActive), current.LifecycleState)
	assert.InDelta(t, 2.0, current.ElapsedHoursSoFar, 0.0001)

	// The reading advances with the clock.
	clk.Advance(30 * time.Minute)
	current, err = svc.CurrentSession(ctx, testPersonID)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, current.ElapsedHoursSoFar, 0.0001)
}

func TestHistory(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	// Three closed days, then history is read back most recent first.
	for day := 0; day < 3; day++ {
		_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
		require.NoError(t, err)
		clk.Advance(9 * time.Hour)
		_, err = svc.PunchOut(ctx, attendance.PunchOutRequest{PersonID: testPersonID})
		require.NoError(t, err)
		clk.Advance(15 * time.Hour)
	}

	history, err := svc.History(ctx, testPersonID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "2026-03-04", history[0].Date)
	assert.Equal(t, "2026-03-03", history[1].Date)
	assert.Equal(t, "2026-03-02", history[2].Date)
	for _, rec := range history {
		assert.Equal(t, string(attendance.StateCompleted), rec.LifecycleState)
		require.NotNil(t, rec.ElapsedHours)
		assert.InDelta(t, 9.0, *rec.ElapsedHours, 0.0001)
	}
}

func TestHistory_UnknownPerson(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.History(context.Background(), "0195e3a4-0000-7000-8000-00000000dead")
	assert.ErrorIs(t, err, person.ErrPersonNotFound)
}

func TestRegularize(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	// Punch in 45 minutes past scheduled start: late.
	clk.Set(time.Date(2026, 3, 2, 9, 45, 0, 0, time.UTC))
	_, err := svc.PunchIn(ctx, attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)

	resp, err := svc.Regularize(ctx, attendance.RegularizeRequest{
		PersonID:   testPersonID,
		Date:       "2026-03-02",
		Reason:     "train delay",
		ApproverID: "0195e3a4-0000-7000-8000-000000000002",
	})
	require.NoError(t, err)
	assert.True(t, resp.Regularized)
	// Status derivation is unchanged by the flag.
	assert.Equal(t, string(attendance.StatusLate), resp.Status)
}

func TestRegularize_NoRecord(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Regularize(context.Background(), attendance.RegularizeRequest{
		PersonID:   testPersonID,
		Date:       "2026-03-02",
		Reason:     "train delay",
		ApproverID: "0195e3a4-0000-7000-8000-000000000002",
	})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestRegularize_MissingReason(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Regularize(context.Background(), attendance.RegularizeRequest{
		PersonID:   testPersonID,
		Date:       "2026-03-02",
		ApproverID: "0195e3a4-0000-7000-8000-000000000002",
	})

	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestPunchIn_TimezoneAheadOfUTC(t *testing.T) {
	store := memory.NewSessionStore()
	directory := memory.NewDirectory(person.TrackedPerson{
		ID:             testPersonID,
		DisplayName:    "Asha Rao",
		ScheduledStart: "09:00",
		Timezone:       "Asia/Jakarta",
		Active:         true,
	})
	// 23:30 UTC March 2 is already the morning of March 3 in UTC+7.
	clk := &clock.Fixed{Instant: time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)}
	svc := NewAttendanceService(store, directory, clk, testPolicy, 30)

	resp, err := svc.PunchIn(context.Background(), attendance.PunchInRequest{PersonID: testPersonID})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", resp.Date)
}
