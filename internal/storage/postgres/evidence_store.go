package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// EvidenceStore implements storage.EvidenceStore using PostgreSQL.
// The UTC publish day is derived once at insert time and stored in
// published_day, so day-range queries never re-parse timestamps.
type EvidenceStore struct {
	pool *Pool
}

// NewEvidenceStore creates a new EvidenceStore.
func NewEvidenceStore(pool *Pool) *EvidenceStore {
	return &EvidenceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EvidenceStore = (*EvidenceStore)(nil)

const evidenceInsertQuery = `
	INSERT INTO evidence_items (
		evidence_id, ticker, source_kind, provider, title, url, excerpt,
		published_at, published_day, retrieved_at,
		sentiment, engagement, hype, shock, tags, flags
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

const evidenceSelectColumns = `
	evidence_id, ticker, source_kind, provider, title, url, excerpt,
	published_at, retrieved_at, sentiment, engagement, hype, shock, tags, flags
`

// Insert adds a new evidence item. Returns ErrDuplicateKey if evidence_id exists.
func (s *EvidenceStore) Insert(ctx context.Context, item *domain.EvidenceItem) error {
	args, err := evidenceArgs(item)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, evidenceInsertQuery, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert evidence item: %w", err)
	}
	return nil
}

// InsertBulk adds multiple items atomically. Fails entire batch on any duplicate.
func (s *EvidenceStore) InsertBulk(ctx context.Context, items []*domain.EvidenceItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		args, err := evidenceArgs(item)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, evidenceInsertQuery, args...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert evidence item in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves an item by its ID. Returns ErrNotFound if not exists.
func (s *EvidenceStore) GetByID(ctx context.Context, evidenceID string) (*domain.EvidenceItem, error) {
	query := `SELECT ` + evidenceSelectColumns + `
		FROM evidence_items
		WHERE evidence_id = $1
	`

	row := s.pool.QueryRow(ctx, query, evidenceID)
	item, err := scanEvidenceItem(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get evidence item by id: %w", err)
	}
	return item, nil
}

// GetByTicker retrieves all items for a ticker, ordered by published_at ASC.
func (s *EvidenceStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.EvidenceItem, error) {
	query := `SELECT ` + evidenceSelectColumns + `
		FROM evidence_items
		WHERE ticker = $1
		ORDER BY published_at ASC, evidence_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get evidence items by ticker: %w", err)
	}
	defer rows.Close()

	return scanEvidenceItems(rows)
}

// GetByTickerAndDayRange retrieves a ticker's items published within
// [startDay, endDay] (inclusive).
func (s *EvidenceStore) GetByTickerAndDayRange(ctx context.Context, ticker, startDay, endDay string) ([]*domain.EvidenceItem, error) {
	query := `SELECT ` + evidenceSelectColumns + `
		FROM evidence_items
		WHERE ticker = $1 AND published_day >= $2 AND published_day <= $3
		ORDER BY published_at ASC, evidence_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("get evidence items by day range: %w", err)
	}
	defer rows.Close()

	return scanEvidenceItems(rows)
}

// evidenceArgs validates an item and builds the insert argument list.
func evidenceArgs(item *domain.EvidenceItem) ([]interface{}, error) {
	if item == nil || item.ID == "" {
		return nil, storage.ErrInvalidInput
	}
	day, ok := domain.DayKeyUTC(item.PublishedAt)
	if !ok {
		return nil, storage.ErrInvalidInput
	}

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	flags := item.Flags
	if flags == nil {
		flags = []string{}
	}

	return []interface{}{
		item.ID,
		item.Ticker,
		string(item.SourceKind),
		item.Provider,
		item.Title,
		item.URL,
		item.Excerpt,
		item.PublishedAt,
		day,
		item.RetrievedAt,
		item.Sentiment,
		item.Engagement,
		item.Hype,
		item.Shock,
		tags,
		flags,
	}, nil
}

// scanEvidenceItem scans a single row into an EvidenceItem.
func scanEvidenceItem(row pgx.Row) (*domain.EvidenceItem, error) {
	var item domain.EvidenceItem
	var sourceKindStr string

	err := row.Scan(
		&item.ID,
		&item.Ticker,
		&sourceKindStr,
		&item.Provider,
		&item.Title,
		&item.URL,
		&item.Excerpt,
		&item.PublishedAt,
		&item.RetrievedAt,
		&item.Sentiment,
		&item.Engagement,
		&item.Hype,
		&item.Shock,
		&item.Tags,
		&item.Flags,
	)
	if err != nil {
		return nil, err
	}

	item.SourceKind = domain.SourceKind(sourceKindStr)
	return &item, nil
}

// scanEvidenceItems scans multiple rows into a slice of EvidenceItem.
func scanEvidenceItems(rows pgx.Rows) ([]*domain.EvidenceItem, error) {
	var items []*domain.EvidenceItem

	for rows.Next() {
		item, err := scanEvidenceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evidence row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence rows: %w", err)
	}

	return items, nil
}
