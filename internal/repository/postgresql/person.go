package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/database"
)

const personColumns = `
	id, display_name, scheduled_start, min_required_hours,
	timezone, supervisor_id, active, created_at, updated_at
`

type directoryRepository struct {
	db database.Beginner
}

func scanPerson(row pgx.Row) (person.TrackedPerson, error) {
	var p person.TrackedPerson
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.ScheduledStart, &p.MinRequiredHours,
		&p.Timezone, &p.SupervisorID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return person.TrackedPerson{}, err
	}
	return p, nil
}

// GetByID implements person.DirectoryRepository.
func (r *directoryRepository) GetByID(ctx context.Context, id string) (person.TrackedPerson, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + personColumns + `
		FROM tracked_people
		WHERE id = $1
		LIMIT 1
	`

	p, err := scanPerson(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return person.TrackedPerson{}, person.ErrPersonNotFound
		}
		return person.TrackedPerson{}, fmt.Errorf("failed to get tracked person: %w", err)
	}

	return p, nil
}

// ListByIDs implements person.DirectoryRepository. Unknown IDs are skipped
// rather than erroring; the roster simply has nothing to show for them.
func (r *directoryRepository) ListByIDs(ctx context.Context, ids []string) ([]person.TrackedPerson, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + personColumns + `
		FROM tracked_people
		WHERE id = ANY($1)
		ORDER BY display_name ASC
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked people: %w", err)
	}
	defer rows.Close()

	return collectPeople(rows)
}

// ListBySupervisor implements person.DirectoryRepository.
func (r *directoryRepository) ListBySupervisor(ctx context.Context, supervisorID string) ([]person.TrackedPerson, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + personColumns + `
		FROM tracked_people
		WHERE supervisor_id = $1
		  AND active = TRUE
		ORDER BY display_name ASC
	`

	rows, err := q.Query(ctx, query, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked people: %w", err)
	}
	defer rows.Close()

	return collectPeople(rows)
}

// ListActive implements person.DirectoryRepository.
func (r *directoryRepository) ListActive(ctx context.Context) ([]person.TrackedPerson, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + personColumns + `
		FROM tracked_people
		WHERE active = TRUE
		ORDER BY display_name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked people: %w", err)
	}
	defer rows.Close()

	return collectPeople(rows)
}

func collectPeople(rows pgx.Rows) ([]person.TrackedPerson, error) {
	var people []person.TrackedPerson
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracked people: %w", err)
	}
	return people, nil
}

func NewDirectoryRepository(db database.Beginner) person.DirectoryRepository {
	return &directoryRepository{db: db}
}
