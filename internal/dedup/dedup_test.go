package dedup

import (
	"testing"

	"equity-noise-lab/internal/domain"
)

func item(id, title, url, excerpt string) *domain.EvidenceItem {
	return &domain.EvidenceItem{
		ID:      id,
		Ticker:  "TSLA",
		Title:   title,
		URL:     url,
		Excerpt: excerpt,
	}
}

func TestDedupe_URLMatch(t *testing.T) {
	items := []*domain.EvidenceItem{
		item("a", "Hedge funds quietly accumulating shares", "https://wsj.com/a/1", "first excerpt here"),
		item("b", "A completely different headline today", "https://wsj.com/a/1?utm_source=x", "second excerpt entirely unrelated"),
	}

	res := Dedupe(items)

	if len(res.Kept) != 1 || res.DroppedCount != 1 {
		t.Fatalf("expected 1 kept / 1 dropped, got %d / %d", len(res.Kept), res.DroppedCount)
	}
	if res.Kept[0].ID != "a" {
		t.Errorf("expected first item kept, got %s", res.Kept[0].ID)
	}
	if res.Decisions[1].Reason != ReasonURLMatch {
		t.Errorf("expected url_match reason, got %s", res.Decisions[1].Reason)
	}
	if !res.Kept[0].HasFlag(domain.FlagDuplicateRemoved) {
		t.Error("expected survivor to carry DUPLICATE_REMOVED flag")
	}
}

func TestDedupe_TitleSimilarity(t *testing.T) {
	items := []*domain.EvidenceItem{
		item("a", "Short interest in TSLA hits new multi-year high", "https://bloomberg.com/1", ""),
		item("b", "Short interest in TSLA hits new multi-year high", "https://reuters.com/2", ""),
	}

	res := Dedupe(items)

	if len(res.Kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(res.Kept))
	}
	if res.Decisions[1].Reason != ReasonTitleSimilarity {
		t.Errorf("expected title_similarity, got %s", res.Decisions[1].Reason)
	}
}

func TestDedupe_ExcerptSimilarity(t *testing.T) {
	excerpt := "Dark pool data suggests heavy institutional accumulation over the last 48 hours"
	items := []*domain.EvidenceItem{
		item("a", "Why TSLA surged today on massive volume", "https://cnbc.com/1", excerpt),
		item("b", "Analyst upgrades citing strong fundamentals", "https://ft.com/2", excerpt),
	}

	res := Dedupe(items)

	if len(res.Kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(res.Kept))
	}
	if res.Decisions[1].Reason != ReasonExcerptSimilarity {
		t.Errorf("expected excerpt_similarity, got %s", res.Decisions[1].Reason)
	}
}

func TestDedupe_EmptyExcerptNeverMatches(t *testing.T) {
	items := []*domain.EvidenceItem{
		item("a", "Market movers: TSLA leads the sector rally", "https://cnbc.com/1", ""),
		item("b", "Fed policy shift impacts valuation models", "https://ft.com/2", ""),
	}

	res := Dedupe(items)

	if len(res.Kept) != 2 || res.DroppedCount != 0 {
		t.Fatalf("expected 2 kept / 0 dropped, got %d / %d", len(res.Kept), res.DroppedCount)
	}
}

// Order sensitivity: the earlier item is always the survivor, regardless of
// which has a "better" URL.
func TestDedupe_OrderSensitivity(t *testing.T) {
	items := []*domain.EvidenceItem{
		item("first", "Is a short squeeze imminent for TSLA?", "", ""),
		item("second", "Is a short squeeze imminent for TSLA?", "https://bloomberg.com/good-url", ""),
	}

	res := Dedupe(items)

	if len(res.Kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(res.Kept))
	}
	if res.Kept[0].ID != "first" {
		t.Errorf("expected earlier item to survive, got %s", res.Kept[0].ID)
	}
}

// Idempotence: deduping the kept output again changes nothing.
func TestDedupe_Idempotent(t *testing.T) {
	items := []*domain.EvidenceItem{
		item("a", "Institutional focus amid changing market regime", "https://wsj.com/1", "volume spike detected in the options chain"),
		item("b", "Institutional focus amid changing market regime", "https://wsj.com/2", ""),
		item("c", "Ape Army assembling for TSLA", "https://reddit.com/r/wsb/1", "to the moon, check out this DD"),
	}

	first := Dedupe(items)
	second := Dedupe(first.Kept)

	if second.DroppedCount != 0 {
		t.Fatalf("expected 0 dropped on second pass, got %d", second.DroppedCount)
	}
	if len(second.Kept) != len(first.Kept) {
		t.Fatalf("expected kept set unchanged, got %d vs %d", len(second.Kept), len(first.Kept))
	}
	for i := range first.Kept {
		if second.Kept[i].ID != first.Kept[i].ID {
			t.Errorf("kept order changed at %d: %s vs %s", i, second.Kept[i].ID, first.Kept[i].ID)
		}
	}
}

func TestDedupe_EmptyInput(t *testing.T) {
	res := Dedupe(nil)
	if len(res.Kept) != 0 || res.DroppedCount != 0 {
		t.Errorf("expected empty result, got %d kept / %d dropped", len(res.Kept), res.DroppedCount)
	}
}

func TestDedupe_EmptyURLsNeverCollide(t *testing.T) {
	items := []*domain.EvidenceItem{
		item("a", "Supply chain improvements boost outlook", "", ""),
		item("b", "Patent approval strengthens competitive moat", "", ""),
	}

	res := Dedupe(items)

	if len(res.Kept) != 2 {
		t.Fatalf("expected 2 kept (empty URLs are not exact matches), got %d", len(res.Kept))
	}
}
