package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnloop/learnloop-api/internal/domain"
	"github.com/learnloop/learnloop-api/internal/platform/postgres"
	"github.com/learnloop/learnloop-api/internal/store"
)

// seedRoadmap inserts a roadmap row for progress tests to attach to.
func seedRoadmap(t *testing.T, tx *sql.Tx, db *sql.DB, userID uuid.UUID) *domain.Roadmap {
	t.Helper()

	roadmapStore := postgres.NewPostgresRoadmapStore(db, nil).WithTx(tx)

	roadmap, err := domain.NewRoadmap(userID, "backend developer", validPayload(t, "seed"))
	require.NoError(t, err)

	saved, err := roadmapStore.Upsert(context.Background(), roadmap)
	require.NoError(t, err)
	return saved
}

func TestProgressStoreSetCompletionIsIdempotent(t *testing.T) {
	db := testDB(t)

	withTx(t, db, func(tx *sql.Tx) {
		ctx := context.Background()
		progressStore := postgres.NewPostgresProgressStore(db, nil).WithTx(tx)
		userID := uuid.New()
		roadmap := seedRoadmap(t, tx, db, userID)

		// Toggle the same node repeatedly
		record, err := progressStore.SetCompletion(ctx, userID, roadmap.ID, "basics", true)
		require.NoError(t, err)
		assert.True(t, record.Completed)

		record, err = progressStore.SetCompletion(ctx, userID, roadmap.ID, "basics", false)
		require.NoError(t, err)
		assert.False(t, record.Completed)

		record, err = progressStore.SetCompletion(ctx, userID, roadmap.ID, "basics", true)
		require.NoError(t, err)
		assert.True(t, record.Completed)

		// Exactly one row remains, holding the latest value
		records, err := progressStore.GetByRoadmap(ctx, userID, roadmap.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "basics", records[0].NodeID)
		assert.True(t, records[0].Completed)
	})
}

func TestProgressStoreGetByRoadmapOrdersByNode(t *testing.T) {
	db := testDB(t)

	withTx(t, db, func(tx *sql.Tx) {
		ctx := context.Background()
		progressStore := postgres.NewPostgresProgressStore(db, nil).WithTx(tx)
		userID := uuid.New()
		roadmap := seedRoadmap(t, tx, db, userID)

		for _, nodeID := range []string{"c-node", "a-node", "b-node"} {
			_, err := progressStore.SetCompletion(ctx, userID, roadmap.ID, nodeID, true)
			require.NoError(t, err)
		}

		records, err := progressStore.GetByRoadmap(ctx, userID, roadmap.ID)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "a-node", records[0].NodeID)
		assert.Equal(t, "b-node", records[1].NodeID)
		assert.Equal(t, "c-node", records[2].NodeID)
	})
}

func TestProgressStoreRejectsUnknownRoadmap(t *testing.T) {
	db := testDB(t)

	withTx(t, db, func(tx *sql.Tx) {
		progressStore := postgres.NewPostgresProgressStore(db, nil).WithTx(tx)

		// No roadmap row exists, so the FK rejects the write
		_, err := progressStore.SetCompletion(context.Background(), uuid.New(), uuid.New(), "basics", true)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestProgressStoreValidatesInput(t *testing.T) {
	db := testDB(t)

	withTx(t, db, func(tx *sql.Tx) {
		progressStore := postgres.NewPostgresProgressStore(db, nil).WithTx(tx)
		userID := uuid.New()
		roadmap := seedRoadmap(t, tx, db, userID)

		_, err := progressStore.SetCompletion(context.Background(), userID, roadmap.ID, "", true)
		assert.ErrorIs(t, err, domain.ErrProgressNodeIDEmpty)
	})
}
