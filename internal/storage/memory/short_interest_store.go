package memory

import (
	"context"
	"sort"
	"sync"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

type siKey struct {
	ticker string
	day    string
}

// ShortInterestStore is an in-memory implementation of storage.ShortInterestStore.
type ShortInterestStore struct {
	mu   sync.RWMutex
	data map[siKey]*domain.ShortInterestRow
}

// NewShortInterestStore creates a new in-memory short-interest store.
func NewShortInterestStore() *ShortInterestStore {
	return &ShortInterestStore{
		data: make(map[siKey]*domain.ShortInterestRow),
	}
}

// Insert adds a new row. Returns ErrDuplicateKey if (ticker, day) exists.
func (s *ShortInterestStore) Insert(_ context.Context, row *domain.ShortInterestRow) error {
	if row == nil || row.Ticker == "" || row.Day == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := siKey{row.Ticker, row.Day}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	rowCopy := *row
	s.data[k] = &rowCopy
	return nil
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *ShortInterestStore) InsertBulk(_ context.Context, rows []*domain.ShortInterestRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[siKey]struct{}, len(rows))
	for _, row := range rows {
		if row == nil || row.Ticker == "" || row.Day == "" {
			return storage.ErrInvalidInput
		}
		k := siKey{row.Ticker, row.Day}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, row := range rows {
		rowCopy := *row
		s.data[siKey{row.Ticker, row.Day}] = &rowCopy
	}
	return nil
}

// GetByTicker retrieves all rows for a ticker, ordered by day ASC.
func (s *ShortInterestStore) GetByTicker(_ context.Context, ticker string) ([]*domain.ShortInterestRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ShortInterestRow
	for _, row := range s.data {
		if row.Ticker == ticker {
			rowCopy := *row
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}

// GetByTickerAndDayRange retrieves a ticker's rows within [startDay, endDay] (inclusive).
func (s *ShortInterestStore) GetByTickerAndDayRange(_ context.Context, ticker, startDay, endDay string) ([]*domain.ShortInterestRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ShortInterestRow
	for _, row := range s.data {
		if row.Ticker == ticker && row.Day >= startDay && row.Day <= endDay {
			rowCopy := *row
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ShortInterestStore = (*ShortInterestStore)(nil)
