// Package store defines the persistence boundary for per-user state. The
// rest of the application does not know whether the medium is Postgres, a
// file directory, or process memory; it only sees these interfaces.
package store

import (
	"context"

	"github.com/nutricalc/nutricalc-backend/models"
)

// State is everything persisted for one user. Either field may be absent:
// a first-run user has neither, a user who never submitted the assessment
// form has a food log but no profile.
type State struct {
	Profile *models.Profile
	FoodLog []models.FoodLogEntry // most-recent-first
}

// Store owns profile and food-log persistence. Implementations must
// serialize mutations: callers issue one mutation at a time per user, and the
// store is the mutual-exclusion boundary when the medium itself is not.
type Store interface {
	// Load returns the user's state, or an empty State when nothing has been
	// stored yet. A missing record is not an error.
	Load(ctx context.Context, userEmail string) (State, error)

	// SaveProfile replaces the user's profile wholesale.
	SaveProfile(ctx context.Context, userEmail string, p models.Profile) error

	// AppendEntry inserts e at the front of the user's food log.
	AppendEntry(ctx context.Context, userEmail string, e models.FoodLogEntry) error

	// RemoveEntry deletes the entry with the given id. Removing an unknown id
	// is a no-op, not an error.
	RemoveEntry(ctx context.Context, userEmail, entryID string) error

	// Replace swaps the user's entire state in one operation (snapshot import).
	Replace(ctx context.Context, userEmail string, s State) error

	Close() error
}

// Catalog caches resolved nutrition facts keyed by normalized query, so
// repeated searches for the same food do not re-hit external services.
type Catalog interface {
	// GetFact returns the cached fact for query, or nil when absent.
	GetFact(ctx context.Context, query string) (*models.FoodFact, error)

	// PutFact inserts or updates the fact for fact.Query.
	PutFact(ctx context.Context, fact models.FoodFact) error

	// ListUnverified returns up to limit facts still awaiting verification.
	ListUnverified(ctx context.Context, limit int) ([]models.FoodFact, error)
}
