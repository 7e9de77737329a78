/*
store.go - Persistence interface for grant definitions

PURPOSE:
  A Grant is a named, stored Request: who holds it and on what terms.
  Schedules are never stored; they are recomputed from the grant on read,
  so changing a rounding policy never leaves stale tranches behind.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - vesting/store/memory.go: In-memory for testing

SEE ALSO:
  - factory/grant.go: JSON grant definitions
  - api/handlers.go: Grant endpoints
*/
package vesting

import (
	"context"
	"time"
)

type GrantID string

type Grant struct {
	ID        GrantID
	Name      string
	Holder    string
	Request   Request
	CreatedAt time.Time
}

// Schedule computes the grant's schedule with its own rounding policy.
func (g Grant) Schedule() (*Schedule, error) {
	return Compute(g.Request)
}

// GrantStore persists grant definitions.
type GrantStore interface {
	// SaveGrant inserts a grant. Returns ErrDuplicateGrant if the ID exists.
	SaveGrant(ctx context.Context, g Grant) error

	// GetGrant returns ErrGrantNotFound for unknown IDs.
	GetGrant(ctx context.Context, id GrantID) (*Grant, error)

	// ListGrants returns grants ordered by creation time.
	ListGrants(ctx context.Context) ([]Grant, error)

	// DeleteGrant returns ErrGrantNotFound for unknown IDs.
	DeleteGrant(ctx context.Context, id GrantID) error
}
