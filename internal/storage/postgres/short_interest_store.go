package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// ShortInterestStore implements storage.ShortInterestStore using PostgreSQL.
type ShortInterestStore struct {
	pool *Pool
}

// NewShortInterestStore creates a new ShortInterestStore.
func NewShortInterestStore(pool *Pool) *ShortInterestStore {
	return &ShortInterestStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ShortInterestStore = (*ShortInterestStore)(nil)

const shortInterestInsertQuery = `
	INSERT INTO short_interest (
		ticker, day, short_interest_pct, crowded_score, squeeze_score, utilization, borrow_cost
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert adds a new row. Returns ErrDuplicateKey if (ticker, day) exists.
func (s *ShortInterestStore) Insert(ctx context.Context, row *domain.ShortInterestRow) error {
	if row == nil || row.Ticker == "" || row.Day == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, shortInterestInsertQuery,
		row.Ticker,
		row.Day,
		row.ShortInterestPct,
		row.CrowdedScore,
		row.SqueezeScore,
		row.Utilization,
		row.BorrowCost,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert short interest row: %w", err)
	}
	return nil
}

// InsertBulk adds multiple rows atomically. Fails entire batch on any duplicate.
func (s *ShortInterestStore) InsertBulk(ctx context.Context, rows []*domain.ShortInterestRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if row == nil || row.Ticker == "" || row.Day == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, shortInterestInsertQuery,
			row.Ticker,
			row.Day,
			row.ShortInterestPct,
			row.CrowdedScore,
			row.SqueezeScore,
			row.Utilization,
			row.BorrowCost,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert short interest row in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByTicker retrieves all rows for a ticker, ordered by day ASC.
func (s *ShortInterestStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.ShortInterestRow, error) {
	query := `
		SELECT ticker, day, short_interest_pct, crowded_score, squeeze_score, utilization, borrow_cost
		FROM short_interest
		WHERE ticker = $1
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get short interest by ticker: %w", err)
	}
	defer rows.Close()

	return scanShortInterestRows(rows)
}

// GetByTickerAndDayRange retrieves a ticker's rows within [startDay, endDay] (inclusive).
func (s *ShortInterestStore) GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.ShortInterestRow, error) {
	query := `
		SELECT ticker, day, short_interest_pct, crowded_score, squeeze_score, utilization, borrow_cost
		FROM short_interest
		WHERE ticker = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("get short interest by day range: %w", err)
	}
	defer rows.Close()

	return scanShortInterestRows(rows)
}

// scanShortInterestRows scans multiple rows into a slice of ShortInterestRow.
func scanShortInterestRows(rows pgx.Rows) ([]*domain.ShortInterestRow, error) {
	var result []*domain.ShortInterestRow

	for rows.Next() {
		var r domain.ShortInterestRow
		err := rows.Scan(
			&r.Ticker,
			&r.Day,
			&r.ShortInterestPct,
			&r.CrowdedScore,
			&r.SqueezeScore,
			&r.Utilization,
			&r.BorrowCost,
		)
		if err != nil {
			return nil, fmt.Errorf("scan short interest row: %w", err)
		}
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate short interest rows: %w", err)
	}

	return result, nil
}
