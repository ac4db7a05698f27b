// Package aggregate buckets deduplicated evidence into per-day signal
// statistics and flags black-swan event days.
package aggregate

import (
	"github.com/rs/zerolog/log"

	"equity-noise-lab/internal/domain"
)

// Swan magnitude thresholds. Heuristic constants reproduced exactly; one
// qualifying item is enough to flag the whole day.
const (
	NewsShockSwanThreshold  = 5.0
	RetailHypeSwanThreshold = 0.9
)

// DefaultSwanTags is the fixed lowercase tail-risk vocabulary.
func DefaultSwanTags() map[string]struct{} {
	return map[string]struct{}{
		"regulatory": {},
		"fraud":      {},
		"liquidity":  {},
		"lawsuit":    {},
		"halt":       {},
		"bankruptcy": {},
		"sec":        {},
		"downgrade":  {},
	}
}

// Aggregate builds sparse per-day buckets from one ticker's deduplicated
// evidence. Days with no items do not appear in the map; downstream consumers
// treat a missing day as all-zero. Items with no parseable publish date are
// skipped and logged rather than failing the batch; the skipped count is
// returned for data quality reporting.
func Aggregate(items []*domain.EvidenceItem, swanTags map[string]struct{}) (map[string]*domain.DailySignalBucket, int) {
	buckets := make(map[string]*domain.DailySignalBucket)
	skipped := 0

	for _, item := range items {
		day, ok := domain.DayKeyUTC(item.PublishedAt)
		if !ok {
			skipped++
			log.Warn().
				Str("item_id", item.ID).
				Str("ticker", item.Ticker).
				Str("published_at", item.PublishedAt).
				Msg("skipping evidence item with malformed publish timestamp")
			continue
		}

		b, exists := buckets[day]
		if !exists {
			b = &domain.DailySignalBucket{Ticker: item.Ticker, Day: day}
			buckets[day] = b
		}

		switch item.SourceKind {
		case domain.SourceRetail:
			engagement := item.Engagement
			if engagement <= 0 {
				engagement = 1
			}
			b.RetailEngagementSum += float64(engagement)
			b.RetailHypeSum += hypeMagnitude(item)
			b.RetailCount++
		default:
			// Institutional/news is the default bucket for unknown kinds.
			b.NewsCount++
			b.NewsSentimentSum += item.Sentiment
			b.NewsSentimentN++
		}

		if isSwanItem(item, swanTags) {
			b.IsSwanDay = true
		}
	}

	return buckets, skipped
}

// GroupByTicker splits a mixed evidence batch into per-ticker slices,
// preserving input order within each ticker.
func GroupByTicker(items []*domain.EvidenceItem) map[string][]*domain.EvidenceItem {
	grouped := make(map[string][]*domain.EvidenceItem)
	for _, item := range items {
		grouped[item.Ticker] = append(grouped[item.Ticker], item)
	}
	return grouped
}

// hypeMagnitude is |sentiment| when set, else the item's hype value: retail
// posts carry conviction in either field depending on the collector.
func hypeMagnitude(item *domain.EvidenceItem) float64 {
	v := item.Sentiment
	if v == 0 {
		v = item.Hype
	}
	if v < 0 {
		return -v
	}
	return v
}

func isSwanItem(item *domain.EvidenceItem, swanTags map[string]struct{}) bool {
	for _, tag := range item.Tags {
		if _, ok := swanTags[tag]; ok {
			return true
		}
	}
	switch item.SourceKind {
	case domain.SourceRetail:
		return hypeMagnitude(item) > RetailHypeSwanThreshold
	default:
		return item.Shock > NewsShockSwanThreshold
	}
}
