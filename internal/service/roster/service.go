package roster

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/roster"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/clock"
)

type RosterServiceImpl struct {
	store        attendance.SessionStore
	directory    person.DirectoryRepository
	clock        clock.Clock
	policy       attendance.Policy
	lookbackDays int
}

// FetchRosterPage implements roster.RosterService.
func (s *RosterServiceImpl) FetchRosterPage(ctx context.Context, req roster.PageRequest) (roster.Page, error) {
	if err := req.Validate(); err != nil {
		return roster.Page{}, err
	}

	var (
		people []person.TrackedPerson
		err    error
	)
	if len(req.PersonIDs) > 0 {
		people, err = s.directory.ListByIDs(ctx, req.PersonIDs)
	} else {
		people, err = s.directory.ListBySupervisor(ctx, req.SupervisorID)
	}
	if err != nil {
		return roster.Page{}, fmt.Errorf("failed to resolve roster: %w", err)
	}

	if len(people) == 0 {
		return emptyPage(req), nil
	}

	byID := make(map[string]person.TrackedPerson, len(people))
	ids := make([]string, 0, len(people))
	for _, p := range people {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	// Bounded lookback horizon. The upper bound reaches one day ahead so
	// people whose local civil day is ahead of UTC are not cut off.
	today := attendance.CivilDateOf(s.clock.Now(), time.UTC)
	from := today.AddDate(0, 0, -s.lookbackDays)
	to := today.AddDate(0, 0, 1)

	sessions, err := s.store.ListByPersons(ctx, ids, from, to)
	if err != nil {
		return roster.Page{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	// Group by calendar date, most recent first, stable within a date.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})

	total := len(sessions)
	totalPages := int(math.Ceil(float64(total) / float64(req.PageSize)))

	// Out-of-range pages clamp to the last valid page; only an empty data
	// set yields an empty page.
	pageIndex := req.PageIndex
	if totalPages == 0 {
		pageIndex = 0
	} else if pageIndex >= totalPages {
		pageIndex = totalPages - 1
	}

	start := pageIndex * req.PageSize
	end := start + req.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	records := make([]roster.Record, 0, end-start)
	for _, sess := range sessions[start:end] {
		records = append(records, s.mapSessionToRecord(sess, byID[sess.PersonID]))
	}

	return roster.Page{
		Records:    records,
		PageIndex:  pageIndex,
		PageSize:   req.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

func (s *RosterServiceImpl) mapSessionToRecord(sess attendance.Session, p person.TrackedPerson) roster.Record {
	rec := roster.Record{
		PersonID:    sess.PersonID,
		DisplayName: p.DisplayName,
		Date:        sess.Date.Format("2006-01-02"),
		Regularized: sess.Regularized,
	}

	if sess.PunchInAt != nil {
		formatted := sess.PunchInAt.UTC().Format(time.RFC3339)
		rec.PunchInAt = &formatted
	}
	if sess.PunchOutAt != nil {
		formatted := sess.PunchOutAt.UTC().Format(time.RFC3339)
		rec.PunchOutAt = &formatted
	}

	now := s.clock.Now().UTC()
	switch sess.State {
	case attendance.StateActive:
		elapsed := sess.ElapsedHours(now)
		rec.ElapsedHours = &elapsed
	case attendance.StateCompleted:
		elapsed := sess.ElapsedHours(now)
		overtime := attendance.OvertimeHours(elapsed, p.RequiredHours())
		rec.ElapsedHours = &elapsed
		rec.OvertimeHours = &overtime
	}

	scheduledStart, err := p.ScheduledStartOn(sess.Date)
	if err != nil {
		scheduledStart = sess.Date
		if sess.PunchInAt != nil {
			scheduledStart = *sess.PunchInAt
		}
	}
	rec.Status = string(attendance.DeriveStatus(&sess, scheduledStart, p.RequiredHours(), s.policy))

	return rec
}

func emptyPage(req roster.PageRequest) roster.Page {
	return roster.Page{
		Records:    []roster.Record{},
		PageIndex:  0,
		PageSize:   req.PageSize,
		TotalCount: 0,
		TotalPages: 0,
	}
}

func NewRosterService(
	store attendance.SessionStore,
	directory person.DirectoryRepository,
	clk clock.Clock,
	policy attendance.Policy,
	lookbackDays int,
) roster.RosterService {
	return &RosterServiceImpl{
		store:        store,
		directory:    directory,
		clock:        clk,
		policy:       policy,
		lookbackDays: lookbackDays,
	}
}
