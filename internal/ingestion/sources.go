package ingestion

import (
	"context"

	"equity-noise-lab/internal/domain"
)

// EvidenceSource provides raw evidence items from external collectors.
type EvidenceSource interface {
	// Fetch returns evidence for a ticker published within [startDay, endDay]
	// (inclusive, "YYYY-MM-DD" UTC days; empty bounds disable that side).
	// Items may be unordered; Manager enforces deterministic ordering.
	Fetch(ctx context.Context, ticker, startDay, endDay string) ([]*domain.EvidenceItem, error)
}

// ShortInterestSource provides the external short-interest reference series.
type ShortInterestSource interface {
	// Fetch returns all short-interest rows for a ticker.
	// Rows may be unordered; Manager enforces deterministic ordering.
	Fetch(ctx context.Context, ticker string) ([]*domain.ShortInterestRow, error)
}
