package clickhouse

import (
	"context"
	"fmt"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// DailyBucketStore implements storage.DailyBucketStore using ClickHouse.
type DailyBucketStore struct {
	conn *Conn
}

// NewDailyBucketStore creates a new DailyBucketStore.
func NewDailyBucketStore(conn *Conn) *DailyBucketStore {
	return &DailyBucketStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyBucketStore = (*DailyBucketStore)(nil)

// InsertBulk adds multiple buckets. Rows for a (ticker, day) written by an
// earlier run are superseded via ReplacingMergeTree; reads use FINAL so the
// latest run wins. A batch carrying the same key twice is a caller bug and
// fails with ErrDuplicateKey.
func (s *DailyBucketStore) InsertBulk(ctx context.Context, buckets []*domain.DailySignalBucket) error {
	if len(buckets) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		ticker string
		day    string
	}
	seen := make(map[key]struct{})
	for _, b := range buckets {
		if b == nil || b.Ticker == "" || b.Day == "" {
			return storage.ErrInvalidInput
		}
		k := key{b.Ticker, b.Day}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_signal_buckets (
			ticker, day, news_count, news_sentiment_sum, news_sentiment_n,
			retail_engagement_sum, retail_hype_sum, retail_count, is_swan_day
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range buckets {
		err = batch.Append(
			b.Ticker, b.Day, uint32(b.NewsCount), b.NewsSentimentSum, uint32(b.NewsSentimentN),
			b.RetailEngagementSum, b.RetailHypeSum, uint32(b.RetailCount), boolToUInt8(b.IsSwanDay),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTicker retrieves all buckets for a ticker, ordered by day ASC.
func (s *DailyBucketStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.DailySignalBucket, error) {
	query := `
		SELECT ticker, day, news_count, news_sentiment_sum, news_sentiment_n,
		       retail_engagement_sum, retail_hype_sum, retail_count, is_swan_day
		FROM daily_signal_buckets FINAL
		WHERE ticker = ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query buckets by ticker: %w", err)
	}
	defer rows.Close()

	return scanDailyBuckets(rows)
}

// GetByTickerAndDayRange retrieves a ticker's buckets within [startDay, endDay] (inclusive).
func (s *DailyBucketStore) GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.DailySignalBucket, error) {
	query := `
		SELECT ticker, day, news_count, news_sentiment_sum, news_sentiment_n,
		       retail_engagement_sum, retail_hype_sum, retail_count, is_swan_day
		FROM daily_signal_buckets FINAL
		WHERE ticker = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("query buckets by day range: %w", err)
	}
	defer rows.Close()

	return scanDailyBuckets(rows)
}

// scanDailyBuckets scans multiple rows.
func scanDailyBuckets(rows chRows) ([]*domain.DailySignalBucket, error) {
	var buckets []*domain.DailySignalBucket

	for rows.Next() {
		var b domain.DailySignalBucket
		var newsCount, newsSentimentN, retailCount uint32
		var isSwan uint8

		err := rows.Scan(
			&b.Ticker, &b.Day, &newsCount, &b.NewsSentimentSum, &newsSentimentN,
			&b.RetailEngagementSum, &b.RetailHypeSum, &retailCount, &isSwan,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily bucket row: %w", err)
		}

		b.NewsCount = int(newsCount)
		b.NewsSentimentN = int(newsSentimentN)
		b.RetailCount = int(retailCount)
		b.IsSwanDay = isSwan != 0
		buckets = append(buckets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily bucket rows: %w", err)
	}

	return buckets, nil
}

func boolToUInt8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
