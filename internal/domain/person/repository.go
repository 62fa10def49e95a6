package person

import (
	"context"
	"errors"
)

var ErrPersonNotFound = errors.New("tracked person not found")

// DirectoryRepository resolves tracked people from the HR directory. The
// engine consumes it read-only: roster resolution for a supervisor, policy
// lookups for the state machine.
type DirectoryRepository interface {
	// GetByID retrieves one tracked person
	GetByID(ctx context.Context, id string) (TrackedPerson, error)

	// ListByIDs retrieves the given people; unknown ids are skipped
	ListByIDs(ctx context.Context, ids []string) ([]TrackedPerson, error)

	// ListBySupervisor resolves a supervisor's roster
	ListBySupervisor(ctx context.Context, supervisorID string) ([]TrackedPerson, error)

	// ListActive retrieves every active tracked person, used by the
	// absence-marking job
	ListActive(ctx context.Context) ([]TrackedPerson, error)
}
