// Package stub provides fixed in-memory sources for testing ingestion.
package stub

import (
	"context"

	"equity-noise-lab/internal/domain"
)

// StubEvidenceSource returns fixed in-memory evidence for testing.
// Items can be intentionally unordered to test sorting.
// Implements ingestion.EvidenceSource interface.
type StubEvidenceSource struct {
	items []*domain.EvidenceItem
}

// NewStubEvidenceSource creates a new stub evidence source with the given items.
func NewStubEvidenceSource(items []*domain.EvidenceItem) *StubEvidenceSource {
	return &StubEvidenceSource{items: items}
}

// Fetch returns items matching the ticker and day range.
// Returns copies to prevent mutation.
func (s *StubEvidenceSource) Fetch(_ context.Context, ticker, startDay, endDay string) ([]*domain.EvidenceItem, error) {
	var result []*domain.EvidenceItem
	for _, item := range s.items {
		if item.Ticker != ticker {
			continue
		}
		day, ok := domain.DayKeyUTC(item.PublishedAt)
		if ok {
			if startDay != "" && day < startDay {
				continue
			}
			if endDay != "" && day > endDay {
				continue
			}
		}
		copy := *item
		result = append(result, &copy)
	}
	return result, nil
}

// StubShortInterestSource returns fixed in-memory rows for testing.
// Implements ingestion.ShortInterestSource interface.
type StubShortInterestSource struct {
	rows []*domain.ShortInterestRow
}

// NewStubShortInterestSource creates a new stub short-interest source.
func NewStubShortInterestSource(rows []*domain.ShortInterestRow) *StubShortInterestSource {
	return &StubShortInterestSource{rows: rows}
}

// Fetch returns rows matching the ticker.
func (s *StubShortInterestSource) Fetch(_ context.Context, ticker string) ([]*domain.ShortInterestRow, error) {
	var result []*domain.ShortInterestRow
	for _, row := range s.rows {
		if row.Ticker == ticker {
			copy := *row
			result = append(result, &copy)
		}
	}
	return result, nil
}
