package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/learnloop/learnloop-api/internal/domain"
)

// RoadmapStore defines the interface for roadmap data persistence.
// A roadmap row is keyed by the (user, role) pair; saving an existing pair
// overwrites the payload and touches updated_at.
type RoadmapStore interface {
	// Upsert saves the roadmap, inserting a new row or, when a row for the
	// same (user, role) pair exists, replacing its payload in place. The
	// returned roadmap carries the persisted ID and timestamps, which for
	// an update are those of the existing row.
	// It handles domain validation internally.
	Upsert(ctx context.Context, roadmap *domain.Roadmap) (*domain.Roadmap, error)

	// GetByID retrieves a roadmap owned by the given user.
	// Returns ErrRoadmapNotFound if no such roadmap exists for that user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Roadmap, error)

	// ListByUser retrieves all roadmaps owned by the given user, most
	// recently updated first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Roadmap, error)

	// Delete removes a roadmap owned by the given user. Progress rows for
	// the roadmap are removed by the database cascade.
	// Returns ErrRoadmapNotFound if no such roadmap exists for that user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new RoadmapStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) RoadmapStore
}
