package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"equity-noise-lab/internal/storage"
)

// IngestProgressStore is a PostgreSQL implementation of storage.IngestProgressStore.
// Uses two tables:
//   - ingest_progress: one row per feed source with its last cursor
//   - ingest_seen_items: set of processed evidence IDs
type IngestProgressStore struct {
	pool *Pool
}

// NewIngestProgressStore creates a new PostgreSQL ingest progress store.
func NewIngestProgressStore(pool *Pool) *IngestProgressStore {
	return &IngestProgressStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IngestProgressStore = (*IngestProgressStore)(nil)

// GetLastProcessed returns the last processed cursor for a source.
func (s *IngestProgressStore) GetLastProcessed(ctx context.Context, source string) (*storage.IngestProgress, error) {
	if source == "" {
		return nil, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		SELECT source, last_cursor
		FROM ingest_progress
		WHERE source = $1
	`, source)

	var progress storage.IngestProgress
	err := row.Scan(&progress.Source, &progress.Cursor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return &progress, nil
}

// SetLastProcessed saves the last processed cursor for a source.
// Uses upsert to handle initial insert and subsequent updates.
func (s *IngestProgressStore) SetLastProcessed(ctx context.Context, progress *storage.IngestProgress) error {
	if progress == nil || progress.Source == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingest_progress (source, last_cursor, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (source) DO UPDATE
		SET last_cursor = EXCLUDED.last_cursor,
		    updated_at = NOW()
	`, progress.Source, progress.Cursor)

	return err
}

// IsItemSeen checks if an evidence ID has been processed.
func (s *IngestProgressStore) IsItemSeen(ctx context.Context, evidenceID string) (bool, error) {
	if evidenceID == "" {
		return false, storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM ingest_seen_items WHERE evidence_id = $1)
	`, evidenceID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// MarkItemSeen records that an evidence ID has been processed.
func (s *IngestProgressStore) MarkItemSeen(ctx context.Context, evidenceID string) error {
	if evidenceID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingest_seen_items (evidence_id, seen_at)
		VALUES ($1, NOW())
		ON CONFLICT (evidence_id) DO NOTHING
	`, evidenceID)

	return err
}

// LoadSeenItems returns all seen evidence IDs.
func (s *IngestProgressStore) LoadSeenItems(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT evidence_id FROM ingest_seen_items
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
