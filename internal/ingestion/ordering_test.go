package ingestion

import (
	"errors"
	"testing"

	"equity-noise-lab/internal/domain"
)

func TestSortEvidenceItems(t *testing.T) {
	// Intentionally unordered items
	items := []*domain.EvidenceItem{
		{ID: "b", PublishedAt: "2024-03-02T10:00:00Z"},
		{ID: "c", PublishedAt: "2024-03-01T09:00:00Z"},
		{ID: "a", PublishedAt: "2024-03-02T10:00:00Z"},
		{ID: "d", PublishedAt: "2024-03-01T15:00:00Z"},
	}

	SortEvidenceItems(items)

	// Verify order: (published_at ASC, evidence_id ASC)
	expected := []struct {
		publishedAt string
		id          string
	}{
		{"2024-03-01T09:00:00Z", "c"},
		{"2024-03-01T15:00:00Z", "d"},
		{"2024-03-02T10:00:00Z", "a"},
		{"2024-03-02T10:00:00Z", "b"},
	}

	for i, exp := range expected {
		if items[i].PublishedAt != exp.publishedAt || items[i].ID != exp.id {
			t.Errorf("Index %d: got (%s, %s), want (%s, %s)",
				i, items[i].PublishedAt, items[i].ID, exp.publishedAt, exp.id)
		}
	}
}

func TestSortShortInterestRows(t *testing.T) {
	rows := []*domain.ShortInterestRow{
		{Ticker: "SQ", Day: "2024-03-01"},
		{Ticker: "AFRM", Day: "2024-03-02"},
		{Ticker: "AFRM", Day: "2024-03-01"},
	}

	SortShortInterestRows(rows)

	expected := []struct {
		ticker string
		day    string
	}{
		{"AFRM", "2024-03-01"},
		{"AFRM", "2024-03-02"},
		{"SQ", "2024-03-01"},
	}

	for i, exp := range expected {
		if rows[i].Ticker != exp.ticker || rows[i].Day != exp.day {
			t.Errorf("Index %d: got (%s, %s), want (%s, %s)",
				i, rows[i].Ticker, rows[i].Day, exp.ticker, exp.day)
		}
	}
}

func TestValidateEvidenceOrdering(t *testing.T) {
	ordered := []*domain.EvidenceItem{
		{ID: "a", PublishedAt: "2024-03-01T09:00:00Z"},
		{ID: "b", PublishedAt: "2024-03-01T09:00:00Z"},
		{ID: "a", PublishedAt: "2024-03-02T09:00:00Z"},
	}
	if err := ValidateEvidenceOrdering(ordered); err != nil {
		t.Errorf("Expected ordered items to validate, got %v", err)
	}

	unordered := []*domain.EvidenceItem{
		{ID: "a", PublishedAt: "2024-03-02T09:00:00Z"},
		{ID: "a", PublishedAt: "2024-03-01T09:00:00Z"},
	}
	if err := ValidateEvidenceOrdering(unordered); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering, got %v", err)
	}

	duplicate := []*domain.EvidenceItem{
		{ID: "a", PublishedAt: "2024-03-01T09:00:00Z"},
		{ID: "a", PublishedAt: "2024-03-01T09:00:00Z"},
	}
	if err := ValidateEvidenceOrdering(duplicate); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering for duplicates, got %v", err)
	}
}

func TestValidateShortInterestOrdering(t *testing.T) {
	ordered := []*domain.ShortInterestRow{
		{Ticker: "AFRM", Day: "2024-03-01"},
		{Ticker: "AFRM", Day: "2024-03-02"},
		{Ticker: "SQ", Day: "2024-03-01"},
	}
	if err := ValidateShortInterestOrdering(ordered); err != nil {
		t.Errorf("Expected ordered rows to validate, got %v", err)
	}

	unordered := []*domain.ShortInterestRow{
		{Ticker: "AFRM", Day: "2024-03-02"},
		{Ticker: "AFRM", Day: "2024-03-01"},
	}
	if err := ValidateShortInterestOrdering(unordered); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering, got %v", err)
	}
}
