package memory

import (
	"context"
	"sort"
	"sync"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

type dayKey struct {
	ticker string
	day    string
}

// DailyBucketStore is an in-memory implementation of storage.DailyBucketStore.
type DailyBucketStore struct {
	mu   sync.RWMutex
	data map[dayKey]*domain.DailySignalBucket
}

// NewDailyBucketStore creates a new in-memory daily bucket store.
func NewDailyBucketStore() *DailyBucketStore {
	return &DailyBucketStore{
		data: make(map[dayKey]*domain.DailySignalBucket),
	}
}

// InsertBulk adds multiple buckets. Rows for a (ticker, day) already stored
// by an earlier run are replaced: the pipeline recomputes whole series, so
// the latest run supersedes. A batch carrying the same key twice is a caller
// bug and fails with ErrDuplicateKey.
func (s *DailyBucketStore) InsertBulk(_ context.Context, buckets []*domain.DailySignalBucket) error {
	if len(buckets) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[dayKey]struct{}, len(buckets))
	for _, b := range buckets {
		if b == nil || b.Ticker == "" || b.Day == "" {
			return storage.ErrInvalidInput
		}
		k := dayKey{b.Ticker, b.Day}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, b := range buckets {
		bucketCopy := *b
		s.data[dayKey{b.Ticker, b.Day}] = &bucketCopy
	}
	return nil
}

// GetByTicker retrieves all buckets for a ticker, ordered by day ASC.
func (s *DailyBucketStore) GetByTicker(_ context.Context, ticker string) ([]*domain.DailySignalBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailySignalBucket
	for _, b := range s.data {
		if b.Ticker == ticker {
			bucketCopy := *b
			result = append(result, &bucketCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}

// GetByTickerAndDayRange retrieves a ticker's buckets within [startDay, endDay] (inclusive).
func (s *DailyBucketStore) GetByTickerAndDayRange(_ context.Context, ticker, startDay, endDay string) ([]*domain.DailySignalBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailySignalBucket
	for _, b := range s.data {
		if b.Ticker == ticker && b.Day >= startDay && b.Day <= endDay {
			bucketCopy := *b
			result = append(result, &bucketCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.DailyBucketStore = (*DailyBucketStore)(nil)
