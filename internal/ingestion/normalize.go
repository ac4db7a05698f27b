package ingestion

import (
	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/hype"
	"equity-noise-lab/internal/idhash"
)

// NormalizeEvidenceItem assigns the deterministic evidence ID and backfills
// metrics that collectors leave empty. Existing non-zero metrics are never
// overwritten: collector-side scoring wins over the local fallback rules.
func NormalizeEvidenceItem(item *domain.EvidenceItem) {
	item.ID = idhash.ComputeEvidenceID(
		item.Ticker,
		item.SourceKind,
		item.Provider,
		item.Title,
		item.PublishedAt,
	)

	switch item.SourceKind {
	case domain.SourceRetail:
		if item.Hype == 0 {
			item.Hype = hype.Score(item.Title, item.Excerpt)
		}
	case domain.SourceInstitutional:
		if item.Sentiment == 0 {
			item.Sentiment = hype.NewsSentiment(item.Title, item.Excerpt)
		}
		if item.Shock == 0 {
			item.Shock = hype.Shock(item.Sentiment, item.Title)
		}
	}
}
