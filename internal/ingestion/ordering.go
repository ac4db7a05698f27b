package ingestion

import (
	"errors"
	"sort"

	"equity-noise-lab/internal/domain"
)

// ErrInvalidOrdering is returned when items are not properly ordered.
var ErrInvalidOrdering = errors.New("items are not in deterministic order")

// SortEvidenceItems orders items by (published_at ASC, evidence_id ASC).
// This matches the read order guaranteed by every evidence store.
func SortEvidenceItems(items []*domain.EvidenceItem) {
	sort.Slice(items, func(i, j int) bool {
		return compareEvidenceItems(items[i], items[j]) < 0
	})
}

// SortShortInterestRows orders rows by (ticker ASC, day ASC).
func SortShortInterestRows(rows []*domain.ShortInterestRow) {
	sort.Slice(rows, func(i, j int) bool {
		return compareShortInterestRows(rows[i], rows[j]) < 0
	})
}

// ValidateEvidenceOrdering checks if items are strictly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateEvidenceOrdering(items []*domain.EvidenceItem) error {
	for i := 1; i < len(items); i++ {
		if compareEvidenceItems(items[i-1], items[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// ValidateShortInterestOrdering checks if rows are strictly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateShortInterestOrdering(rows []*domain.ShortInterestRow) error {
	for i := 1; i < len(rows); i++ {
		if compareShortInterestRows(rows[i-1], rows[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareEvidenceItems returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (published_at ASC, evidence_id ASC)
func compareEvidenceItems(a, b *domain.EvidenceItem) int {
	if a.PublishedAt != b.PublishedAt {
		if a.PublishedAt < b.PublishedAt {
			return -1
		}
		return 1
	}
	if a.ID != b.ID {
		if a.ID < b.ID {
			return -1
		}
		return 1
	}
	return 0
}

// compareShortInterestRows returns comparison result for short-interest rows.
// Order: (ticker ASC, day ASC)
func compareShortInterestRows(a, b *domain.ShortInterestRow) int {
	if a.Ticker != b.Ticker {
		if a.Ticker < b.Ticker {
			return -1
		}
		return 1
	}
	if a.Day != b.Day {
		if a.Day < b.Day {
			return -1
		}
		return 1
	}
	return 0
}
