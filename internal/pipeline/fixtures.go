package pipeline

import (
	"context"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/idhash"
	"equity-noise-lab/internal/storage"
)

// LoadFixtures populates stores with deterministic demo data: a few days of
// institutional and retail evidence for three tickers, with a near-duplicate
// headline pair and a couple of flagged URLs mixed in, plus matching
// short-interest reference rows.
func LoadFixtures(
	ctx context.Context,
	evidenceStore storage.EvidenceStore,
	shortInterestStore storage.ShortInterestStore,
) error {
	if err := loadEvidence(ctx, evidenceStore); err != nil {
		return err
	}
	return loadShortInterest(ctx, shortInterestStore)
}

type fixtureItem struct {
	ticker      string
	kind        domain.SourceKind
	provider    string
	title       string
	url         string
	publishedAt string
	sentiment   float64
	engagement  int64
	hype        float64
	tags        []string
	flags       []string
}

func loadEvidence(ctx context.Context, store storage.EvidenceStore) error {
	news := func(ticker, provider, title, url, publishedAt string, sentiment float64) fixtureItem {
		return fixtureItem{
			ticker: ticker, kind: domain.SourceInstitutional,
			provider: provider, title: title, url: url,
			publishedAt: publishedAt, sentiment: sentiment,
		}
	}
	retail := func(ticker, provider, title, url, publishedAt string, engagement int64, hype float64) fixtureItem {
		return fixtureItem{
			ticker: ticker, kind: domain.SourceRetail,
			provider: provider, title: title, url: url,
			publishedAt: publishedAt, engagement: engagement, hype: hype,
		}
	}

	fixtures := []fixtureItem{
		// AFRM
		news("AFRM", "Reuters", "Affirm shares slide after insider lockup expiry", "https://example.com/news/afrm-lockup", "2024-03-01T12:00:00Z", -0.4),
		// Near-duplicate of the Reuters wire above; dropped by the dedupe pass.
		news("AFRM", "Bloomberg", "Affirm shares slide after insider lockup expiry", "https://example.com/news/afrm-lockup-recap", "2024-03-01T14:30:00Z", -0.3),
		news("AFRM", "WSJ", "BNPL lenders face new scrutiny from regulators", "https://example.com/news/bnpl-scrutiny", "2024-03-02T09:00:00Z", -0.2),
		news("AFRM", "Reuters", "Affirm expands merchant network with retail partnership", "https://example.com/news/afrm-partnership", "2024-03-04T10:00:00Z", 0.5),
		news("AFRM", "Barron's", "Analysts split on Affirm after mixed quarter", "https://example.com/news/afrm-mixed-quarter", "2024-03-05T16:00:00Z", 0.1),
		retail("AFRM", "reddit", "AFRM short squeeze loading, borrow fees exploding", "https://example.com/r/wsb/afrm-squeeze", "2024-03-02T20:00:00Z", 1200, 0.9),
		retail("AFRM", "stocktwits", "adding more AFRM on this dip", "https://placeholder.com/afrm-dip", "2024-03-03T13:00:00Z", 340, 0.6),
		retail("AFRM", "reddit", "my AFRM position is down bad, holding anyway", "https://example.com/r/afrm-holding", "2024-03-05T22:00:00Z", 85, 0.4),

		// TSLA
		news("TSLA", "Reuters", "Tesla recalls vehicles over software fault", "https://example.com/news/tsla-recall", "2024-03-01T08:00:00Z", -0.5),
		news("TSLA", "Bloomberg", "SEC opens inquiry into Tesla disclosures", "https://example.com/news/tsla-sec", "2024-03-02T11:00:00Z", -0.7),
		news("TSLA", "WSJ", "Tesla raises delivery guidance for the quarter", "https://example.com/news/tsla-guidance", "2024-03-04T09:30:00Z", 0.6),
		news("TSLA", "Reuters", "Tesla breaks ground on new factory site", "https://example.com/news/tsla-factory", "2024-03-06T07:00:00Z", 0.4),
		retail("TSLA", "reddit", "TSLA puts printing after the SEC news", "https://example.com/r/tsla-puts", "2024-03-02T18:00:00Z", 2400, 0.95),
		retail("TSLA", "stocktwits", "tesla bulls never learn", "", "2024-03-03T15:00:00Z", 150, 0.5),
		retail("TSLA", "reddit", "loading TSLA calls into delivery numbers", "https://example.com/r/tsla-calls", "2024-03-05T19:00:00Z", 600, 0.7),

		// SQ
		news("SQ", "Reuters", "Block posts stronger than expected quarterly profit", "https://example.com/news/sq-earnings", "2024-03-01T13:00:00Z", 0.5),
		news("SQ", "Bloomberg", "Block announces layoffs in hardware division", "https://example.com/news/sq-layoffs", "2024-03-03T10:00:00Z", -0.3),
		news("SQ", "WSJ", "Cash App growth slows as competition intensifies", "https://example.com/news/sq-cashapp", "2024-03-05T12:00:00Z", -0.1),
		retail("SQ", "reddit", "SQ is the most underrated fintech right now", "https://example.com/r/sq-underrated", "2024-03-02T21:00:00Z", 430, 0.65),
		retail("SQ", "stocktwits", "trimmed my SQ position before earnings", "https://placeholder-social.com/sq-trim", "2024-03-04T14:00:00Z", 95, 0.35),
	}

	// Flags mirror what the ingest audit would attach.
	tagFixture(fixtures, "SEC opens inquiry into Tesla disclosures", "sec", "regulatory")
	tagFixture(fixtures, "TSLA puts printing after the SEC news", "sec")
	flagFixture(fixtures, "adding more AFRM on this dip", domain.FlagPlaceholderURL)
	flagFixture(fixtures, "trimmed my SQ position before earnings", domain.FlagPlaceholderURL)
	flagFixture(fixtures, "tesla bulls never learn", domain.FlagEmptyURL)

	items := make([]*domain.EvidenceItem, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, &domain.EvidenceItem{
			ID:          idhash.ComputeEvidenceID(f.ticker, f.kind, f.provider, f.title, f.publishedAt),
			Ticker:      f.ticker,
			SourceKind:  f.kind,
			Provider:    f.provider,
			Title:       f.title,
			URL:         f.url,
			PublishedAt: f.publishedAt,
			RetrievedAt: "2024-03-07T00:00:00Z",
			Sentiment:   f.sentiment,
			Engagement:  f.engagement,
			Hype:        f.hype,
			Tags:        f.tags,
			Flags:       f.flags,
		})
	}
	return store.InsertBulk(ctx, items)
}

func tagFixture(fixtures []fixtureItem, title string, tags ...string) {
	for i := range fixtures {
		if fixtures[i].title == title {
			fixtures[i].tags = append(fixtures[i].tags, tags...)
		}
	}
}

func flagFixture(fixtures []fixtureItem, title string, flags ...string) {
	for i := range fixtures {
		if fixtures[i].title == title {
			fixtures[i].flags = append(fixtures[i].flags, flags...)
		}
	}
}

func loadShortInterest(ctx context.Context, store storage.ShortInterestStore) error {
	type si struct {
		day      string
		pct      float64
		crowded  float64
		squeeze  float64
		util     float64
		borrowed float64
	}
	byTicker := map[string][]si{
		"AFRM": {
			{"2024-03-01", 17.8, 52, 38, 88.0, 4.1},
			{"2024-03-02", 18.4, 55, 44, 89.5, 4.8},
			{"2024-03-03", 18.9, 57, 49, 90.2, 5.6},
			{"2024-03-04", 18.2, 54, 41, 88.8, 4.5},
			{"2024-03-05", 19.3, 60, 55, 91.0, 6.2},
			{"2024-03-06", 19.0, 58, 51, 90.5, 5.9},
		},
		"TSLA": {
			{"2024-03-01", 3.1, 30, 22, 55.0, 0.8},
			{"2024-03-02", 3.6, 36, 31, 58.5, 1.1},
			{"2024-03-03", 3.9, 39, 35, 60.0, 1.3},
			{"2024-03-04", 3.4, 33, 27, 57.0, 1.0},
			{"2024-03-05", 3.7, 37, 32, 59.0, 1.2},
			{"2024-03-06", 3.5, 34, 28, 57.5, 1.0},
		},
		"SQ": {
			{"2024-03-01", 6.2, 41, 30, 70.0, 1.9},
			{"2024-03-02", 6.5, 43, 33, 71.5, 2.1},
			{"2024-03-03", 6.9, 46, 38, 73.0, 2.5},
			{"2024-03-04", 6.4, 42, 32, 71.0, 2.0},
			{"2024-03-05", 6.7, 44, 35, 72.0, 2.3},
			{"2024-03-06", 6.6, 43, 34, 71.8, 2.2},
		},
	}

	var rows []*domain.ShortInterestRow
	for ticker, series := range byTicker {
		for _, s := range series {
			rows = append(rows, &domain.ShortInterestRow{
				Ticker:           ticker,
				Day:              s.day,
				ShortInterestPct: s.pct,
				CrowdedScore:     s.crowded,
				SqueezeScore:     s.squeeze,
				Utilization:      s.util,
				BorrowCost:       s.borrowed,
			})
		}
	}
	return store.InsertBulk(ctx, rows)
}
