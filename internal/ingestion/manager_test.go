package ingestion

import (
	"context"
	"testing"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/ingestion/stub"
	"equity-noise-lab/internal/storage"
	"equity-noise-lab/internal/storage/memory"
)

// orderValidatingEvidenceStore wraps an EvidenceStore and validates ordering in InsertBulk.
// Returns ErrInvalidOrdering if items are not properly ordered.
type orderValidatingEvidenceStore struct {
	storage.EvidenceStore
}

func (s *orderValidatingEvidenceStore) InsertBulk(ctx context.Context, items []*domain.EvidenceItem) error {
	if err := ValidateEvidenceOrdering(items); err != nil {
		return err
	}
	return s.EvidenceStore.InsertBulk(ctx, items)
}

func TestManager_IngestEvidence_Ordering(t *testing.T) {
	// Unordered items: arrival order differs from published order.
	// Manager must sort these before InsertBulk, otherwise validating store fails.
	items := []*domain.EvidenceItem{
		{Ticker: "AFRM", SourceKind: domain.SourceInstitutional, Provider: "Reuters", Title: "t3", PublishedAt: "2024-03-03T10:00:00Z", Sentiment: 0.2},
		{Ticker: "AFRM", SourceKind: domain.SourceInstitutional, Provider: "Reuters", Title: "t1", PublishedAt: "2024-03-01T10:00:00Z", Sentiment: 0.2},
		{Ticker: "AFRM", SourceKind: domain.SourceInstitutional, Provider: "Reuters", Title: "t2", PublishedAt: "2024-03-02T10:00:00Z", Sentiment: 0.2},
	}

	source := stub.NewStubEvidenceSource(items)
	store := &orderValidatingEvidenceStore{EvidenceStore: memory.NewEvidenceStore()}

	mgr := NewManager(ManagerOptions{
		EvidenceSource: source,
		EvidenceStore:  store,
	})

	ctx := context.Background()
	count, err := mgr.IngestEvidence(ctx, "AFRM", "", "")
	if err != nil {
		t.Fatalf("IngestEvidence failed: %v (Manager must sort before InsertBulk)", err)
	}

	if count != 3 {
		t.Errorf("Expected 3 items ingested, got %d", count)
	}
}

func TestManager_IngestEvidence_AssignsDeterministicIDs(t *testing.T) {
	items := []*domain.EvidenceItem{
		{Ticker: "SQ", SourceKind: domain.SourceRetail, Provider: "reddit", Title: "squeeze time", Excerpt: "to the moon", PublishedAt: "2024-03-01T10:00:00Z"},
	}

	store := memory.NewEvidenceStore()
	mgr := NewManager(ManagerOptions{
		EvidenceSource: stub.NewStubEvidenceSource(items),
		EvidenceStore:  store,
	})

	ctx := context.Background()
	if _, err := mgr.IngestEvidence(ctx, "SQ", "", ""); err != nil {
		t.Fatalf("IngestEvidence failed: %v", err)
	}

	stored, err := store.GetByTicker(ctx, "SQ")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 stored item, got %d", len(stored))
	}
	if len(stored[0].ID) != 64 {
		t.Errorf("Expected 64-char hex ID, got %q", stored[0].ID)
	}
	if stored[0].Hype == 0 {
		t.Error("Expected retail hype to be backfilled during normalization")
	}
}

func TestManager_IngestEvidence_AuditsURLs(t *testing.T) {
	items := []*domain.EvidenceItem{
		{Ticker: "TSLA", SourceKind: domain.SourceRetail, Provider: "twitter", Title: "chatter", PublishedAt: "2024-03-01T10:00:00Z",
			URL: "https://placeholder-social.com/tsla-1", Hype: 0.4},
		{Ticker: "TSLA", SourceKind: domain.SourceRetail, Provider: "twitter", Title: "more chatter", PublishedAt: "2024-03-01T11:00:00Z",
			URL: "", Hype: 0.4},
	}

	store := memory.NewEvidenceStore()
	mgr := NewManager(ManagerOptions{
		EvidenceSource: stub.NewStubEvidenceSource(items),
		EvidenceStore:  store,
	})

	ctx := context.Background()
	if _, err := mgr.IngestEvidence(ctx, "TSLA", "", ""); err != nil {
		t.Fatalf("IngestEvidence failed: %v", err)
	}

	stored, err := store.GetByTicker(ctx, "TSLA")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored items, got %d", len(stored))
	}
	if !stored[0].HasFlag(domain.FlagPlaceholderURL) {
		t.Errorf("Expected %s flag on placeholder item, got %v", domain.FlagPlaceholderURL, stored[0].Flags)
	}
	if !stored[1].HasFlag(domain.FlagEmptyURL) {
		t.Errorf("Expected %s flag on URL-less item, got %v", domain.FlagEmptyURL, stored[1].Flags)
	}
}

func TestManager_IngestEvidence_SkipsSeenItems(t *testing.T) {
	items := []*domain.EvidenceItem{
		{Ticker: "AFRM", SourceKind: domain.SourceInstitutional, Provider: "WSJ", Title: "t1", PublishedAt: "2024-03-01T10:00:00Z", Sentiment: 0.3},
		{Ticker: "AFRM", SourceKind: domain.SourceInstitutional, Provider: "WSJ", Title: "t2", PublishedAt: "2024-03-02T10:00:00Z", Sentiment: 0.3},
	}

	mgr := NewManager(ManagerOptions{
		EvidenceSource: stub.NewStubEvidenceSource(items),
		EvidenceStore:  memory.NewEvidenceStore(),
		ProgressStore:  memory.NewIngestProgressStore(),
	})

	ctx := context.Background()

	count, err := mgr.IngestEvidence(ctx, "AFRM", "", "")
	if err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 items on first ingest, got %d", count)
	}

	// Second pull over the same source window must store nothing
	count, err = mgr.IngestEvidence(ctx, "AFRM", "", "")
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 items on re-ingest, got %d", count)
	}
}

func TestManager_IngestEvidence_IntraBatchDuplicate(t *testing.T) {
	// Same identity appears twice in one pull (overlapping cache files)
	items := []*domain.EvidenceItem{
		{Ticker: "SHOP", SourceKind: domain.SourceInstitutional, Provider: "CNBC", Title: "same story", PublishedAt: "2024-03-01T10:00:00Z", Sentiment: 0.3},
		{Ticker: "SHOP", SourceKind: domain.SourceInstitutional, Provider: "CNBC", Title: "same story", PublishedAt: "2024-03-01T10:00:00Z", Sentiment: 0.3},
	}

	mgr := NewManager(ManagerOptions{
		EvidenceSource: stub.NewStubEvidenceSource(items),
		EvidenceStore:  memory.NewEvidenceStore(),
	})

	ctx := context.Background()
	count, err := mgr.IngestEvidence(ctx, "SHOP", "", "")
	if err != nil {
		t.Fatalf("IngestEvidence failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 item after intra-batch dedupe, got %d", count)
	}
}

func TestManager_IngestEvidence_DayRangeFilter(t *testing.T) {
	items := []*domain.EvidenceItem{
		{Ticker: "PYPL", SourceKind: domain.SourceInstitutional, Provider: "Reuters", Title: "early", PublishedAt: "2024-02-28T10:00:00Z", Sentiment: 0.3},
		{Ticker: "PYPL", SourceKind: domain.SourceInstitutional, Provider: "Reuters", Title: "inside", PublishedAt: "2024-03-01T10:00:00Z", Sentiment: 0.3},
		{Ticker: "PYPL", SourceKind: domain.SourceInstitutional, Provider: "Reuters", Title: "late", PublishedAt: "2024-03-05T10:00:00Z", Sentiment: 0.3},
	}

	mgr := NewManager(ManagerOptions{
		EvidenceSource: stub.NewStubEvidenceSource(items),
		EvidenceStore:  memory.NewEvidenceStore(),
	})

	ctx := context.Background()
	count, err := mgr.IngestEvidence(ctx, "PYPL", "2024-03-01", "2024-03-04")
	if err != nil {
		t.Fatalf("IngestEvidence failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 item within day range, got %d", count)
	}
}

func TestManager_IngestShortInterest(t *testing.T) {
	rows := []*domain.ShortInterestRow{
		{Ticker: "AFRM", Day: "2024-03-02", ShortInterestPct: 21.0},
		{Ticker: "AFRM", Day: "2024-03-01", ShortInterestPct: 20.0},
	}

	store := memory.NewShortInterestStore()
	mgr := NewManager(ManagerOptions{
		ShortInterestSource: stub.NewStubShortInterestSource(rows),
		ShortInterestStore:  store,
	})

	ctx := context.Background()

	count, err := mgr.IngestShortInterest(ctx, "AFRM")
	if err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 rows, got %d", count)
	}

	// Overlapping vendor pull: existing (ticker, day) rows are skipped
	count, err = mgr.IngestShortInterest(ctx, "AFRM")
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 new rows on re-ingest, got %d", count)
	}

	stored, err := store.GetByTicker(ctx, "AFRM")
	if err != nil {
		t.Fatalf("GetByTicker failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("Expected 2 stored rows, got %d", len(stored))
	}
	if stored[0].Day != "2024-03-01" {
		t.Errorf("Expected rows ordered by day, first is %s", stored[0].Day)
	}
}

func TestManager_NilSourcesAreNoOps(t *testing.T) {
	mgr := NewManager(ManagerOptions{})
	ctx := context.Background()

	count, err := mgr.IngestEvidence(ctx, "AFRM", "", "")
	if err != nil || count != 0 {
		t.Errorf("Expected no-op, got count=%d err=%v", count, err)
	}

	count, err = mgr.IngestShortInterest(ctx, "AFRM")
	if err != nil || count != 0 {
		t.Errorf("Expected no-op, got count=%d err=%v", count, err)
	}
}
