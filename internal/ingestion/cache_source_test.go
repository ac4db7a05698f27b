package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCache(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	return path
}

func TestCacheEvidenceSource_Fetch(t *testing.T) {
	path := writeCache(t, "news_cache.json", `[
		{
			"id": "news-AFRM-2024-03-01-0",
			"ticker": "AFRM",
			"source_type": "institutional",
			"provider": "Bloomberg",
			"title": "Short interest in AFRM hits new multi-year high",
			"url": "https://bloomberg.com/articles/afrm-2024-03-01-0",
			"published_at_utc": "2024-03-01T14:30:00Z",
			"retrieved_at_utc": "2024-03-02T00:00:00Z",
			"excerpt": "The cost to borrow AFRM shares has skyrocketed.",
			"tags": ["Short-Interest"],
			"metrics": {"sentiment": -0.4, "shock": 3.2, "engagement": 1200},
			"quality_flags": []
		},
		{
			"id": "retail-SQ-2024-03-01-0",
			"ticker": "SQ",
			"source_type": "retail",
			"provider": "reddit",
			"title": "SQ to the moon",
			"url": "https://placeholder-social.com/sq-0",
			"published_at_utc": "2024-03-01T18:00:00Z",
			"retrieved_at_utc": "2024-03-02T00:00:00Z",
			"excerpt": "Shorts are trapped.",
			"tags": ["squeeze_watch"],
			"metrics": {"sentiment": 0.8, "engagement": 9000, "hype": 0.9},
			"quality_flags": ["PLACEHOLDER_URL"]
		}
	]`)

	source := NewCacheEvidenceSource(path)
	ctx := context.Background()

	items, err := source.Fetch(ctx, "AFRM", "", "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 AFRM item, got %d", len(items))
	}

	item := items[0]
	if item.Provider != "Bloomberg" {
		t.Errorf("Expected Bloomberg, got %s", item.Provider)
	}
	if item.Sentiment != -0.4 || item.Shock != 3.2 || item.Engagement != 1200 {
		t.Errorf("Metrics not mapped: sentiment=%v shock=%v engagement=%d",
			item.Sentiment, item.Shock, item.Engagement)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "short-interest" {
		t.Errorf("Expected lowercased tags, got %v", item.Tags)
	}

	retail, err := source.Fetch(ctx, "SQ", "", "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(retail) != 1 {
		t.Fatalf("Expected 1 SQ item, got %d", len(retail))
	}
	if retail[0].Hype != 0.9 {
		t.Errorf("Expected hype 0.9, got %v", retail[0].Hype)
	}
	if !retail[0].HasFlag("PLACEHOLDER_URL") {
		t.Errorf("Expected upstream quality flag preserved, got %v", retail[0].Flags)
	}
}

func TestCacheEvidenceSource_DayRange(t *testing.T) {
	path := writeCache(t, "cache.json", `[
		{"ticker": "TSLA", "source_type": "retail", "provider": "reddit", "title": "a",
		 "published_at_utc": "2024-02-28T10:00:00Z", "metrics": {}},
		{"ticker": "TSLA", "source_type": "retail", "provider": "reddit", "title": "b",
		 "published_at_utc": "2024-03-02T10:00:00Z", "metrics": {}},
		{"ticker": "TSLA", "source_type": "retail", "provider": "reddit", "title": "c",
		 "published_at_utc": "2024-03-10T10:00:00Z", "metrics": {}}
	]`)

	source := NewCacheEvidenceSource(path)
	items, err := source.Fetch(context.Background(), "TSLA", "2024-03-01", "2024-03-05")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item in range, got %d", len(items))
	}
	if items[0].Title != "b" {
		t.Errorf("Expected item b, got %s", items[0].Title)
	}
}

func TestCacheEvidenceSource_SkipsMalformedEntries(t *testing.T) {
	path := writeCache(t, "cache.json", `[
		{"ticker": "AFRM", "source_type": "institutional", "provider": "WSJ", "title": "good",
		 "published_at_utc": "2024-03-01T10:00:00Z", "metrics": {}},
		{"ticker": "AFRM", "source_type": "carrier-pigeon", "provider": "WSJ", "title": "bad kind",
		 "published_at_utc": "2024-03-01T11:00:00Z", "metrics": {}},
		{"source_type": "retail", "provider": "reddit", "title": "no ticker",
		 "published_at_utc": "2024-03-01T12:00:00Z", "metrics": {}}
	]`)

	source := NewCacheEvidenceSource(path)
	items, err := source.Fetch(context.Background(), "AFRM", "", "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected only the valid item, got %d", len(items))
	}
	if items[0].Title != "good" {
		t.Errorf("Expected the valid item, got %s", items[0].Title)
	}
}

func TestCacheEvidenceSource_MissingFileIsEmpty(t *testing.T) {
	source := NewCacheEvidenceSource(filepath.Join(t.TempDir(), "absent.json"))
	items, err := source.Fetch(context.Background(), "AFRM", "", "")
	if err != nil {
		t.Fatalf("Expected missing cache to be empty, got error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestCacheEvidenceSource_MultipleFiles(t *testing.T) {
	news := writeCache(t, "news.json", `[
		{"ticker": "SHOP", "source_type": "institutional", "provider": "Reuters", "title": "n",
		 "published_at_utc": "2024-03-01T10:00:00Z", "metrics": {}}
	]`)
	retail := writeCache(t, "retail.json", `[
		{"ticker": "SHOP", "source_type": "retail", "provider": "discord", "title": "r",
		 "published_at_utc": "2024-03-01T20:00:00Z", "metrics": {}}
	]`)

	source := NewCacheEvidenceSource(news, retail)
	items, err := source.Fetch(context.Background(), "SHOP", "", "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected items from both caches, got %d", len(items))
	}
}
