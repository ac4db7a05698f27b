package storage

import "context"

// IngestProgress represents the last processed position in an evidence feed.
type IngestProgress struct {
	Source string // feed name, e.g. "newsapi" or "retail_ws"
	Cursor string // last processed published_at timestamp or provider cursor
}

// IngestProgressStore provides persistence for ingestion state.
// This enables resumption after restarts without reprocessing or duplicating items.
type IngestProgressStore interface {
	// GetLastProcessed returns the last processed cursor for a source.
	// Returns ErrNotFound if no progress has been saved yet.
	GetLastProcessed(ctx context.Context, source string) (*IngestProgress, error)

	// SetLastProcessed saves the last processed cursor for a source.
	SetLastProcessed(ctx context.Context, progress *IngestProgress) error

	// IsItemSeen checks if an evidence ID has been processed.
	IsItemSeen(ctx context.Context, evidenceID string) (bool, error)

	// MarkItemSeen records that an evidence ID has been processed.
	MarkItemSeen(ctx context.Context, evidenceID string) error

	// LoadSeenItems returns all seen evidence IDs (for warming the in-memory cache).
	LoadSeenItems(ctx context.Context) ([]string, error)
}
