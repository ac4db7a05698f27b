package memory

import (
	"context"
	"sort"
	"sync"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// NoiseSeriesStore is an in-memory implementation of storage.NoiseSeriesStore.
type NoiseSeriesStore struct {
	mu   sync.RWMutex
	data map[dayKey]*domain.NoiseSeriesPoint
}

// NewNoiseSeriesStore creates a new in-memory noise series store.
func NewNoiseSeriesStore() *NoiseSeriesStore {
	return &NoiseSeriesStore{
		data: make(map[dayKey]*domain.NoiseSeriesPoint),
	}
}

// InsertBulk adds multiple points. Rows for a (ticker, day) already stored
// by an earlier run are replaced: the engine recomputes the whole series on
// every run, so the latest run supersedes. A batch carrying the same key
// twice is a caller bug and fails with ErrDuplicateKey.
func (s *NoiseSeriesStore) InsertBulk(_ context.Context, points []*domain.NoiseSeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[dayKey]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Ticker == "" || p.Day == "" {
			return storage.ErrInvalidInput
		}
		k := dayKey{p.Ticker, p.Day}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[dayKey{p.Ticker, p.Day}] = &pointCopy
	}
	return nil
}

// GetByTicker retrieves all points for a ticker, ordered by day ASC.
func (s *NoiseSeriesStore) GetByTicker(_ context.Context, ticker string) ([]*domain.NoiseSeriesPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NoiseSeriesPoint
	for _, p := range s.data {
		if p.Ticker == ticker {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}

// GetByTickerAndDayRange retrieves a ticker's points within [startDay, endDay] (inclusive).
func (s *NoiseSeriesStore) GetByTickerAndDayRange(_ context.Context, ticker, startDay, endDay string) ([]*domain.NoiseSeriesPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NoiseSeriesPoint
	for _, p := range s.data {
		if p.Ticker == ticker && p.Day >= startDay && p.Day <= endDay {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.NoiseSeriesStore = (*NoiseSeriesStore)(nil)
