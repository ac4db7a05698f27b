package clickhouse

import (
	"context"
	"fmt"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// NoiseSeriesStore implements storage.NoiseSeriesStore using ClickHouse.
type NoiseSeriesStore struct {
	conn *Conn
}

// NewNoiseSeriesStore creates a new NoiseSeriesStore.
func NewNoiseSeriesStore(conn *Conn) *NoiseSeriesStore {
	return &NoiseSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.NoiseSeriesStore = (*NoiseSeriesStore)(nil)

// InsertBulk adds multiple points. Rows for a (ticker, day) written by an
// earlier run are superseded via ReplacingMergeTree; reads use FINAL so the
// latest run wins. A batch carrying the same key twice is a caller bug and
// fails with ErrDuplicateKey.
func (s *NoiseSeriesStore) InsertBulk(ctx context.Context, points []*domain.NoiseSeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		ticker string
		day    string
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.Ticker == "" || p.Day == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Ticker, p.Day}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO noise_series (
			ticker, day, news_volume_norm, retail_volume_norm, avg_news_sentiment,
			avg_retail_hype, raw_combined, z_score, noise_index, is_swan
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Ticker, p.Day, p.NewsVolumeNorm, p.RetailVolumeNorm, p.AvgNewsSentiment,
			p.AvgRetailHype, p.RawCombined, p.ZScore, p.NoiseIndex, boolToUInt8(p.IsSwan),
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

// GetByTicker retrieves all points for a ticker, ordered by day ASC.
func (s *NoiseSeriesStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.NoiseSeriesPoint, error) {
	query := `
		SELECT ticker, day, news_volume_norm, retail_volume_norm, avg_news_sentiment,
		       avg_retail_hype, raw_combined, z_score, noise_index, is_swan
		FROM noise_series FINAL
		WHERE ticker = ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query series by ticker: %w", err)
	}
	defer rows.Close()

	return scanNoiseSeries(rows)
}

// GetByTickerAndDayRange retrieves a ticker's points within [startDay, endDay] (inclusive).
func (s *NoiseSeriesStore) GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.NoiseSeriesPoint, error) {
	query := `
		SELECT ticker, day, news_volume_norm, retail_volume_norm, avg_news_sentiment,
		       avg_retail_hype, raw_combined, z_score, noise_index, is_swan
		FROM noise_series FINAL
		WHERE ticker = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("query series by day range: %w", err)
	}
	defer rows.Close()

	return scanNoiseSeries(rows)
}

// scanNoiseSeries scans multiple rows.
func scanNoiseSeries(rows chRows) ([]*domain.NoiseSeriesPoint, error) {
	var points []*domain.NoiseSeriesPoint

	for rows.Next() {
		var p domain.NoiseSeriesPoint
		var isSwan uint8

		err := rows.Scan(
			&p.Ticker, &p.Day, &p.NewsVolumeNorm, &p.RetailVolumeNorm, &p.AvgNewsSentiment,
			&p.AvgRetailHype, &p.RawCombined, &p.ZScore, &p.NoiseIndex, &isSwan,
		)
		if err != nil {
			return nil, fmt.Errorf("scan noise series row: %w", err)
		}

		p.IsSwan = isSwan != 0
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate noise series rows: %w", err)
	}

	return points, nil
}
