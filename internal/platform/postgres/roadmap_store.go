package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/learnloop-api/internal/domain"
	"github.com/learnloop/learnloop-api/internal/store"
)

// PostgresRoadmapStore implements the store.RoadmapStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRoadmapStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRoadmapStore creates a new PostgreSQL implementation of the
// RoadmapStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRoadmapStore(db store.DBTX, logger *slog.Logger) *PostgresRoadmapStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRoadmapStore{
		db:     db,
		logger: logger.With(slog.String("component", "roadmap_store")),
	}
}

// Ensure PostgresRoadmapStore implements store.RoadmapStore interface
var _ store.RoadmapStore = (*PostgresRoadmapStore)(nil)

// WithTx implements store.RoadmapStore.WithTx
func (s *PostgresRoadmapStore) WithTx(tx *sql.Tx) store.RoadmapStore {
	return &PostgresRoadmapStore{
		db:     tx,
		logger: s.logger,
	}
}

// Upsert implements store.RoadmapStore.Upsert
// The (user_id, role) pair is the conflict target: re-generating a roadmap
// for the same role replaces the payload in place, keeping the row's ID so
// existing progress records stay attached.
func (s *PostgresRoadmapStore) Upsert(ctx context.Context, roadmap *domain.Roadmap) (*domain.Roadmap, error) {
	if err := roadmap.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO roadmaps (id, user_id, role, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, role) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	now := time.Now().UTC()
	saved := *roadmap

	err := s.db.QueryRowContext(ctx, query,
		roadmap.ID,
		roadmap.UserID,
		roadmap.Role,
		roadmap.Payload,
		now,
	).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upsert roadmap",
			"user_id", roadmap.UserID,
			"role", roadmap.Role,
			"error", err)
		return nil, MapError(err)
	}

	s.logger.DebugContext(ctx, "roadmap saved",
		"roadmap_id", saved.ID,
		"user_id", saved.UserID,
		"role", saved.Role)

	return &saved, nil
}

// GetByID implements store.RoadmapStore.GetByID
// It retrieves a roadmap by ID, scoped to the owning user.
// Returns store.ErrRoadmapNotFound if no such roadmap exists for that user.
func (s *PostgresRoadmapStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Roadmap, error) {
	query := `
		SELECT id, user_id, role, payload, created_at, updated_at
		FROM roadmaps
		WHERE id = $1 AND user_id = $2
	`

	var roadmap domain.Roadmap
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&roadmap.ID,
		&roadmap.UserID,
		&roadmap.Role,
		&roadmap.Payload,
		&roadmap.CreatedAt,
		&roadmap.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRoadmapNotFound
		}
		return nil, MapError(err)
	}

	return &roadmap, nil
}

// ListByUser implements store.RoadmapStore.ListByUser
func (s *PostgresRoadmapStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Roadmap, error) {
	query := `
		SELECT id, user_id, role, payload, created_at, updated_at
		FROM roadmaps
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var roadmaps []*domain.Roadmap
	for rows.Next() {
		var roadmap domain.Roadmap
		if err := rows.Scan(
			&roadmap.ID,
			&roadmap.UserID,
			&roadmap.Role,
			&roadmap.Payload,
			&roadmap.CreatedAt,
			&roadmap.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		roadmaps = append(roadmaps, &roadmap)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return roadmaps, nil
}

// Delete implements store.RoadmapStore.Delete
// Progress rows are removed by the ON DELETE CASCADE on roadmap_progress.
func (s *PostgresRoadmapStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM roadmaps WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete roadmap",
			"roadmap_id", id,
			"user_id", userID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "roadmap"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrRoadmapNotFound
		}
		return err
	}

	return nil
}
