package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/learnloop-api/internal/domain"
	"github.com/learnloop/learnloop-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend. Concurrency control
// is delegated entirely to the database's row-level locking through the
// upsert's native conflict resolution.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// SetCompletion implements store.ProgressStore.SetCompletion
// The (user_id, roadmap_id, node_id) triple is the conflict target, so the
// operation is idempotent: any number of toggles leaves exactly one row
// holding the latest value.
func (s *PostgresProgressStore) SetCompletion(
	ctx context.Context,
	userID, roadmapID uuid.UUID,
	nodeID string,
	completed bool,
) (*domain.ProgressRecord, error) {
	record, err := domain.NewProgressRecord(userID, roadmapID, nodeID, completed)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO roadmap_progress (user_id, roadmap_id, node_id, completed, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, roadmap_id, node_id) DO UPDATE
		SET completed = EXCLUDED.completed, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	now := time.Now().UTC()
	err = s.db.QueryRowContext(ctx, query,
		record.UserID,
		record.RoadmapID,
		record.NodeID,
		record.Completed,
		now,
	).Scan(&record.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upsert progress record",
			"user_id", userID,
			"roadmap_id", roadmapID,
			"node_id", nodeID,
			"error", err)
		return nil, MapError(err)
	}

	return record, nil
}

// GetByRoadmap implements store.ProgressStore.GetByRoadmap
func (s *PostgresProgressStore) GetByRoadmap(
	ctx context.Context,
	userID, roadmapID uuid.UUID,
) ([]*domain.ProgressRecord, error) {
	query := `
		SELECT user_id, roadmap_id, node_id, completed, updated_at
		FROM roadmap_progress
		WHERE user_id = $1 AND roadmap_id = $2
		ORDER BY node_id
	`

	rows, err := s.db.QueryContext(ctx, query, userID, roadmapID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var records []*domain.ProgressRecord
	for rows.Next() {
		var record domain.ProgressRecord
		if err := rows.Scan(
			&record.UserID,
			&record.RoadmapID,
			&record.NodeID,
			&record.Completed,
			&record.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}
