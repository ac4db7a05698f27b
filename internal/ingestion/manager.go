package ingestion

import (
	"context"
	"errors"

	"equity-noise-lab/internal/storage"
	"equity-noise-lab/internal/urlaudit"
)

// Manager orchestrates batch ingestion from sources to storage.
// It normalizes items, audits URLs, enforces deterministic ordering, and
// relies on the progress store to skip already-processed evidence.
type Manager struct {
	evidenceSource      EvidenceSource
	shortInterestSource ShortInterestSource

	evidenceStore      storage.EvidenceStore
	shortInterestStore storage.ShortInterestStore
	progressStore      storage.IngestProgressStore
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	EvidenceSource      EvidenceSource
	ShortInterestSource ShortInterestSource

	EvidenceStore      storage.EvidenceStore
	ShortInterestStore storage.ShortInterestStore
	ProgressStore      storage.IngestProgressStore
}

// NewManager creates a new ingestion manager with the provided sources and stores.
func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		evidenceSource:      opts.EvidenceSource,
		shortInterestSource: opts.ShortInterestSource,
		evidenceStore:       opts.EvidenceStore,
		shortInterestStore:  opts.ShortInterestStore,
		progressStore:       opts.ProgressStore,
	}
}

// IngestEvidence fetches evidence for a ticker within [startDay, endDay],
// normalizes and audits it, and stores unseen items in deterministic order.
// Returns the count of newly stored items.
func (m *Manager) IngestEvidence(ctx context.Context, ticker, startDay, endDay string) (int, error) {
	if m.evidenceSource == nil || m.evidenceStore == nil {
		return 0, nil
	}

	items, err := m.evidenceSource.Fetch(ctx, ticker, startDay, endDay)
	if err != nil {
		return 0, err
	}

	if len(items) == 0 {
		return 0, nil
	}

	for _, item := range items {
		NormalizeEvidenceItem(item)
	}
	urlaudit.Audit(items)

	// Drop items already processed in a previous run. Intra-batch repeats
	// (same deterministic ID from two cache entries) are dropped here too,
	// since InsertBulk fails the whole batch on any duplicate.
	fresh := items[:0]
	inBatch := make(map[string]bool, len(items))
	for _, item := range items {
		if inBatch[item.ID] {
			continue
		}
		inBatch[item.ID] = true

		if m.progressStore != nil {
			seen, err := m.progressStore.IsItemSeen(ctx, item.ID)
			if err != nil {
				return 0, err
			}
			if seen {
				continue
			}
		}
		fresh = append(fresh, item)
	}

	if len(fresh) == 0 {
		return 0, nil
	}

	// Enforce deterministic ordering
	SortEvidenceItems(fresh)

	// Store via bulk insert - storage layer handles duplicates
	if err := m.evidenceStore.InsertBulk(ctx, fresh); err != nil {
		return 0, err
	}

	if m.progressStore != nil {
		for _, item := range fresh {
			if err := m.progressStore.MarkItemSeen(ctx, item.ID); err != nil {
				return 0, err
			}
		}
	}

	return len(fresh), nil
}

// IngestShortInterest fetches the reference series for a ticker and stores it.
// Rows already present for a (ticker, day) are skipped, not errors: vendor
// exports overlap between pulls.
// Returns the count of newly stored rows.
func (m *Manager) IngestShortInterest(ctx context.Context, ticker string) (int, error) {
	if m.shortInterestSource == nil || m.shortInterestStore == nil {
		return 0, nil
	}

	rows, err := m.shortInterestSource.Fetch(ctx, ticker)
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}

	// Enforce deterministic ordering
	SortShortInterestRows(rows)

	count := 0
	for _, row := range rows {
		if err := m.shortInterestStore.Insert(ctx, row); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return count, err
		}
		count++
	}

	return count, nil
}
