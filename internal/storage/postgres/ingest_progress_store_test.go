package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-noise-lab/internal/storage"
)

func TestIngestProgressStore_CursorLifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIngestProgressStore(pool)
	ctx := context.Background()

	_, err := store.GetLastProcessed(ctx, "newsapi")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.SetLastProcessed(ctx, &storage.IngestProgress{
		Source: "newsapi",
		Cursor: "2024-03-01T10:00:00Z",
	}))

	got, err := store.GetLastProcessed(ctx, "newsapi")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:00:00Z", got.Cursor)

	// Upsert overwrites.
	require.NoError(t, store.SetLastProcessed(ctx, &storage.IngestProgress{
		Source: "newsapi",
		Cursor: "2024-03-08T10:00:00Z",
	}))
	got, err = store.GetLastProcessed(ctx, "newsapi")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08T10:00:00Z", got.Cursor)

	// Cursors are independent per source.
	require.NoError(t, store.SetLastProcessed(ctx, &storage.IngestProgress{
		Source: "retail_ws",
		Cursor: "abc",
	}))
	got, err = store.GetLastProcessed(ctx, "newsapi")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08T10:00:00Z", got.Cursor)
}

func TestIngestProgressStore_SeenItems(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIngestProgressStore(pool)
	ctx := context.Background()

	seen, err := store.IsItemSeen(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkItemSeen(ctx, "e1"))
	require.NoError(t, store.MarkItemSeen(ctx, "e1")) // idempotent
	require.NoError(t, store.MarkItemSeen(ctx, "e2"))

	seen, err = store.IsItemSeen(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, seen)

	ids, err := store.LoadSeenItems(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
