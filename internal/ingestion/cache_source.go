package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"equity-noise-lab/internal/domain"
)

// CacheEvidenceSource reads evidence from collector cache files on disk.
// Each file holds a JSON array of collector items (one array per source kind
// by convention, but nothing depends on that split).
type CacheEvidenceSource struct {
	paths []string
}

// NewCacheEvidenceSource creates a source over the given cache file paths.
func NewCacheEvidenceSource(paths ...string) *CacheEvidenceSource {
	return &CacheEvidenceSource{paths: paths}
}

// Fetch returns items for the ticker published within [startDay, endDay].
// A missing cache file is not an error: collectors write caches lazily and
// an absent file just means that feed has produced nothing yet.
func (s *CacheEvidenceSource) Fetch(ctx context.Context, ticker, startDay, endDay string) ([]*domain.EvidenceItem, error) {
	var result []*domain.EvidenceItem

	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read cache %s: %w", path, err)
		}

		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse cache %s: %w", path, err)
		}

		for _, payload := range raw {
			item, err := decodeEvidencePayload(payload)
			if err != nil {
				// Malformed entries are skipped, not fatal: one bad collector
				// row must not block the rest of the cache.
				continue
			}
			if item.Ticker != ticker {
				continue
			}
			if !withinDayRange(item.PublishedAt, startDay, endDay) {
				continue
			}
			result = append(result, item)
		}
	}

	return result, nil
}

// withinDayRange reports whether a timestamp's UTC day falls inside
// [startDay, endDay]. Empty bounds disable that side of the range.
// Unparseable timestamps are kept; normalization and auditing deal with them.
func withinDayRange(publishedAt, startDay, endDay string) bool {
	day, ok := domain.DayKeyUTC(publishedAt)
	if !ok {
		return true
	}
	if startDay != "" && day < startDay {
		return false
	}
	if endDay != "" && day > endDay {
		return false
	}
	return true
}
