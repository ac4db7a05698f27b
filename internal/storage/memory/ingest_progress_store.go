package memory

import (
	"context"
	"sync"

	"equity-noise-lab/internal/storage"
)

// IngestProgressStore is an in-memory implementation of storage.IngestProgressStore.
type IngestProgressStore struct {
	mu        sync.RWMutex
	progress  map[string]*storage.IngestProgress // keyed by source
	seenItems map[string]bool
}

// NewIngestProgressStore creates a new in-memory ingest progress store.
func NewIngestProgressStore() *IngestProgressStore {
	return &IngestProgressStore{
		progress:  make(map[string]*storage.IngestProgress),
		seenItems: make(map[string]bool),
	}
}

// GetLastProcessed returns the last processed cursor for a source.
func (s *IngestProgressStore) GetLastProcessed(_ context.Context, source string) (*storage.IngestProgress, error) {
	if source == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.progress[source]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return &storage.IngestProgress{
		Source: p.Source,
		Cursor: p.Cursor,
	}, nil
}

// SetLastProcessed saves the last processed cursor for a source.
func (s *IngestProgressStore) SetLastProcessed(_ context.Context, progress *storage.IngestProgress) error {
	if progress == nil || progress.Source == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress[progress.Source] = &storage.IngestProgress{
		Source: progress.Source,
		Cursor: progress.Cursor,
	}
	return nil
}

// IsItemSeen checks if an evidence ID has been processed.
func (s *IngestProgressStore) IsItemSeen(_ context.Context, evidenceID string) (bool, error) {
	if evidenceID == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seenItems[evidenceID], nil
}

// MarkItemSeen records that an evidence ID has been processed.
func (s *IngestProgressStore) MarkItemSeen(_ context.Context, evidenceID string) error {
	if evidenceID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seenItems[evidenceID] = true
	return nil
}

// LoadSeenItems returns all seen evidence IDs.
func (s *IngestProgressStore) LoadSeenItems(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.seenItems))
	for id := range s.seenItems {
		ids = append(ids, id)
	}
	return ids, nil
}

// Verify interface compliance at compile time.
var _ storage.IngestProgressStore = (*IngestProgressStore)(nil)
