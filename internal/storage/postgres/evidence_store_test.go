package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

func testEvidenceItem(id, ticker, publishedAt string) *domain.EvidenceItem {
	return &domain.EvidenceItem{
		ID:          id,
		Ticker:      ticker,
		SourceKind:  domain.SourceInstitutional,
		Provider:    "reuters",
		Title:       "title " + id,
		URL:         "https://www.reuters.com/" + id,
		Excerpt:     "excerpt " + id,
		PublishedAt: publishedAt,
		RetrievedAt: "2024-03-20T00:00:00Z",
		Sentiment:   0.25,
		Engagement:  100,
		Tags:        []string{"earnings", "fintech"},
		Flags:       []string{},
	}
}

func TestEvidenceStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEvidenceStore(pool)
	ctx := context.Background()

	item := testEvidenceItem("e1", "AFRM", "2024-03-01T10:00:00Z")
	require.NoError(t, store.Insert(ctx, item))

	got, err := store.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "AFRM", got.Ticker)
	assert.Equal(t, domain.SourceInstitutional, got.SourceKind)
	assert.Equal(t, 0.25, got.Sentiment)
	assert.Equal(t, []string{"earnings", "fintech"}, got.Tags)

	// Duplicate insert
	err = store.Insert(ctx, item)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Missing ID
	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEvidenceStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEvidenceStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testEvidenceItem("e1", "AFRM", "2024-03-01T10:00:00Z")))

	batch := []*domain.EvidenceItem{
		testEvidenceItem("e2", "AFRM", "2024-03-02T10:00:00Z"),
		testEvidenceItem("e1", "AFRM", "2024-03-03T10:00:00Z"), // duplicate
	}
	err := store.InsertBulk(ctx, batch)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The whole batch must have rolled back.
	_, err = store.GetByID(ctx, "e2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEvidenceStore_GetByTickerOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEvidenceStore(pool)
	ctx := context.Background()

	items := []*domain.EvidenceItem{
		testEvidenceItem("e3", "AFRM", "2024-03-03T10:00:00Z"),
		testEvidenceItem("e1", "AFRM", "2024-03-01T10:00:00Z"),
		testEvidenceItem("e2", "AFRM", "2024-03-02T10:00:00Z"),
		testEvidenceItem("x1", "TSLA", "2024-03-01T10:00:00Z"),
	}
	require.NoError(t, store.InsertBulk(ctx, items))

	got, err := store.GetByTicker(ctx, "AFRM")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)
	assert.Equal(t, "e3", got[2].ID)
}

func TestEvidenceStore_GetByTickerAndDayRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEvidenceStore(pool)
	ctx := context.Background()

	items := []*domain.EvidenceItem{
		testEvidenceItem("e1", "AFRM", "2024-03-01T10:00:00Z"),
		testEvidenceItem("e2", "AFRM", "2024-03-05T10:00:00Z"),
		testEvidenceItem("e3", "AFRM", "2024-03-10T10:00:00Z"),
		// +02:00 offset: UTC day is 2024-03-05
		testEvidenceItem("e4", "AFRM", "2024-03-06T01:00:00+02:00"),
	}
	require.NoError(t, store.InsertBulk(ctx, items))

	got, err := store.GetByTickerAndDayRange(ctx, "AFRM", "2024-03-02", "2024-03-05")
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []string{got[0].ID, got[1].ID}
	assert.Contains(t, ids, "e2")
	assert.Contains(t, ids, "e4")
}

func TestEvidenceStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEvidenceStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.EvidenceItem{ID: "x", PublishedAt: "garbage"}), storage.ErrInvalidInput)
}
