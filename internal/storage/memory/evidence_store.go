package memory

import (
	"context"
	"sort"
	"sync"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// EvidenceStore is an in-memory implementation of storage.EvidenceStore.
type EvidenceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.EvidenceItem // keyed by evidence_id
}

// NewEvidenceStore creates a new in-memory evidence store.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{
		data: make(map[string]*domain.EvidenceItem),
	}
}

// Insert adds a new evidence item. Returns ErrDuplicateKey if evidence_id exists.
func (s *EvidenceStore) Insert(_ context.Context, item *domain.EvidenceItem) error {
	if item == nil || item.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[item.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[item.ID] = copyItem(item)
	return nil
}

// InsertBulk adds multiple items atomically. Fails entire batch on any duplicate.
func (s *EvidenceStore) InsertBulk(_ context.Context, items []*domain.EvidenceItem) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == nil || item.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[item.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[item.ID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[item.ID] = struct{}{}
	}

	for _, item := range items {
		s.data[item.ID] = copyItem(item)
	}
	return nil
}

// GetByID retrieves an item by its ID. Returns ErrNotFound if not exists.
func (s *EvidenceStore) GetByID(_ context.Context, evidenceID string) (*domain.EvidenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.data[evidenceID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyItem(item), nil
}

// GetByTicker retrieves all items for a ticker, ordered by published_at ASC.
func (s *EvidenceStore) GetByTicker(_ context.Context, ticker string) ([]*domain.EvidenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EvidenceItem
	for _, item := range s.data {
		if item.Ticker == ticker {
			result = append(result, copyItem(item))
		}
	}

	sortByPublishedAt(result)
	return result, nil
}

// GetByTickerAndDayRange retrieves a ticker's items published within
// [startDay, endDay] (inclusive).
func (s *EvidenceStore) GetByTickerAndDayRange(_ context.Context, ticker, startDay, endDay string) ([]*domain.EvidenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EvidenceItem
	for _, item := range s.data {
		if item.Ticker != ticker {
			continue
		}
		day, ok := domain.DayKeyUTC(item.PublishedAt)
		if !ok {
			continue
		}
		if day >= startDay && day <= endDay {
			result = append(result, copyItem(item))
		}
	}

	sortByPublishedAt(result)
	return result, nil
}

func sortByPublishedAt(items []*domain.EvidenceItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].PublishedAt != items[j].PublishedAt {
			return items[i].PublishedAt < items[j].PublishedAt
		}
		return items[i].ID < items[j].ID
	})
}

// copyItem clones an item including its tag and flag slices so callers cannot
// mutate stored state.
func copyItem(item *domain.EvidenceItem) *domain.EvidenceItem {
	itemCopy := *item
	if item.Tags != nil {
		itemCopy.Tags = append([]string(nil), item.Tags...)
	}
	if item.Flags != nil {
		itemCopy.Flags = append([]string(nil), item.Flags...)
	}
	return &itemCopy
}

// Verify interface compliance at compile time.
var _ storage.EvidenceStore = (*EvidenceStore)(nil)
