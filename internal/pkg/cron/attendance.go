package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
)

// AttendanceJobs materializes zero-punch absence rows for days that have
// fully elapsed. A materialized row stays NOT_STARTED; a late punch-in for
// that day claims it instead of inserting a second row.
type AttendanceJobs struct {
	store     attendance.SessionStore
	directory person.DirectoryRepository
}

func NewAttendanceJobs(store attendance.SessionStore, directory person.DirectoryRepository) *AttendanceJobs {
	return &AttendanceJobs{
		store:     store,
		directory: directory,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, period time.Duration) {
	scheduler.AddJob("materialize_absences", period, j.MaterializeAbsences)
}

func (j *AttendanceJobs) MaterializeAbsences(ctx context.Context) error {
	slog.Info("Cron: Starting absence materialization job")

	people, err := j.directory.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tracked people: %w", err)
	}

	now := time.Now().UTC()
	created := 0

	for _, p := range people {
		// Yesterday in the person's local civil time. Today is never
		// materialized; the day has to be over before it can count as absent.
		loc := p.Location()
		yesterday := attendance.CivilDateOf(now.In(loc).AddDate(0, 0, -1), loc)

		existing, err := j.store.GetByPersonAndDate(ctx, p.ID, yesterday)
		if err != nil {
			slog.Error("Cron: Failed to check attendance", "person_id", p.ID, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		_, err = j.store.Create(ctx, attendance.Session{
			PersonID: p.ID,
			Date:     yesterday,
			State:    attendance.StateNotStarted,
		})
		if err != nil {
			// A concurrent run may have inserted the row already.
			if errors.Is(err, attendance.ErrDayAlreadyClosed) || errors.Is(err, attendance.ErrAlreadyActive) {
				continue
			}
			slog.Error("Cron: Failed to create absence record", "person_id", p.ID, "error", err)
			continue
		}

		created++
	}

	slog.Info("Cron: Materialized absences", "count", created)
	return nil
}
