package storage

import (
	"context"

	"equity-noise-lab/internal/domain"
)

// EvidenceStore provides access to evidence_items storage.
type EvidenceStore interface {
	// Insert adds a new evidence item. Returns ErrDuplicateKey if evidence_id exists.
	Insert(ctx context.Context, item *domain.EvidenceItem) error

	// InsertBulk adds multiple items atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, items []*domain.EvidenceItem) error

	// GetByID retrieves an item by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, evidenceID string) (*domain.EvidenceItem, error)

	// GetByTicker retrieves all items for a ticker, ordered by published_at ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.EvidenceItem, error)

	// GetByTickerAndDayRange retrieves a ticker's items published within
	// [startDay, endDay] (inclusive, "YYYY-MM-DD" UTC days).
	GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.EvidenceItem, error)
}

// ShortInterestStore provides access to short_interest storage.
type ShortInterestStore interface {
	// Insert adds a new row. Returns ErrDuplicateKey if (ticker, day) exists.
	Insert(ctx context.Context, row *domain.ShortInterestRow) error

	// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, rows []*domain.ShortInterestRow) error

	// GetByTicker retrieves all rows for a ticker, ordered by day ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.ShortInterestRow, error)

	// GetByTickerAndDayRange retrieves a ticker's rows within [startDay, endDay] (inclusive).
	GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.ShortInterestRow, error)
}

// DailyBucketStore provides access to daily_signal_buckets storage.
type DailyBucketStore interface {
	// InsertBulk writes a run's buckets. A bucket for an existing (ticker, day)
	// supersedes the stored one; duplicates within the batch fail it entirely.
	InsertBulk(ctx context.Context, buckets []*domain.DailySignalBucket) error

	// GetByTicker retrieves all buckets for a ticker, ordered by day ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.DailySignalBucket, error)

	// GetByTickerAndDayRange retrieves a ticker's buckets within [startDay, endDay] (inclusive).
	GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.DailySignalBucket, error)
}

// NoiseSeriesStore provides access to noise_series storage.
type NoiseSeriesStore interface {
	// InsertBulk writes a recomputed series. A point for an existing (ticker, day)
	// supersedes the stored one; duplicates within the batch fail it entirely.
	InsertBulk(ctx context.Context, points []*domain.NoiseSeriesPoint) error

	// GetByTicker retrieves all points for a ticker, ordered by day ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.NoiseSeriesPoint, error)

	// GetByTickerAndDayRange retrieves a ticker's points within [startDay, endDay] (inclusive).
	GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.NoiseSeriesPoint, error)
}
