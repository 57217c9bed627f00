package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/learnloop/learnloop-api/internal/domain"
)

// ProgressStore defines the interface for per-node completion persistence.
// Writes are upserts on the (user, roadmap, node) natural key, so toggling
// the same node repeatedly always leaves exactly one row reflecting the
// latest value. Persistence failures are surfaced to the caller, never
// hidden: silently dropping a completion toggle is worse than a visible
// error.
type ProgressStore interface {
	// SetCompletion upserts the completion state for a roadmap node,
	// updating completed and updated_at if the row exists and inserting
	// otherwise. Returns the persisted record.
	SetCompletion(
		ctx context.Context,
		userID, roadmapID uuid.UUID,
		nodeID string,
		completed bool,
	) (*domain.ProgressRecord, error)

	// GetByRoadmap retrieves all progress records for a user's roadmap.
	GetByRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) ([]*domain.ProgressRecord, error)

	// WithTx returns a new ProgressStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ProgressStore
}
