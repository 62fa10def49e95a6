package roster

import (
	"context"
)

// RosterService fans a supervisor's historical-record query out to the
// session store, groups by calendar date descending, and paginates.
type RosterService interface {
	FetchRosterPage(ctx context.Context, req PageRequest) (Page, error)
}
