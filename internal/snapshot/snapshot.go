// Package snapshot builds the daily per-ticker market snapshot that the
// review UI reads. Borrow-cost style figures are proxies derived from short
// interest and are labeled as such in the output.
package snapshot

import (
	"math"
	"sort"
	"time"

	"equity-noise-lab/internal/domain"
)

const (
	// SchemaVersion identifies the snapshot JSON layout.
	SchemaVersion = "1.0"

	// NewsWindowDays is the trailing window for news and retail counts.
	NewsWindowDays = 30

	// avgFloatTurnover is the assumed daily float turnover used by the
	// days-to-cover proxy when real average daily volume is unavailable.
	avgFloatTurnover = 0.03
)

// ProxyLabel marks derived figures that stand in for real borrow data.
const ProxyLabel = "PROXY — computed from SI% / avg_float_turnover. NOT real borrow cost data."

// ProMetricsProxy holds borrow-side estimates derived from short interest.
type ProMetricsProxy struct {
	DaysToCover      float64 `json:"days_to_cover"`
	BorrowFeePctEst  float64 `json:"borrow_fee_pct_est"`
	ProxyLabel       string  `json:"proxy_label"`
	UtilizationProxy float64 `json:"utilization_proxy"`
}

// NewsWindow summarizes institutional coverage in the trailing window.
type NewsWindow struct {
	Count           int     `json:"count"`
	UniqueProviders int     `json:"unique_providers"`
	AvgSentiment    float64 `json:"avg_sentiment"`
	SentimentStd    float64 `json:"sentiment_std"`
}

// RetailWindow summarizes retail chatter in the trailing window.
type RetailWindow struct {
	Count int `json:"count"`
}

// TickerSnapshot is one ticker's entry in the daily snapshot.
type TickerSnapshot struct {
	Ticker           string          `json:"ticker"`
	SnapshotDate     string          `json:"snapshot_date,omitempty"`
	LatestDate       string          `json:"latest_date,omitempty"`
	ShortInterestPct float64         `json:"short_interest_pct"`
	CrowdedScore     float64         `json:"crowded_score"`
	SqueezeScore     float64         `json:"squeeze_score"`
	ProMetrics       ProMetricsProxy `json:"pro_metrics_proxy"`
	News30d          NewsWindow      `json:"news_30d"`
	Retail30d        RetailWindow    `json:"retail_30d"`
	SnapShockScore   float64         `json:"snap_shock_score"`
	Error            string          `json:"error,omitempty"`
}

// Snapshot is the full daily snapshot document.
type Snapshot struct {
	SchemaVersion string                     `json:"schema_version"`
	GeneratedAt   string                     `json:"generated_at"`
	SnapshotDate  string                     `json:"snapshot_date"`
	Note          string                     `json:"note"`
	Tickers       map[string]*TickerSnapshot `json:"tickers"`
}

// Builder assembles snapshots with an injectable clock for deterministic
// output in tests.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder using the real clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderWithClock creates a Builder with a custom clock.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build produces the daily snapshot for the focus tickers from short-interest
// rows and evidence items. Tickers with no short-interest data get an error
// entry instead of metrics.
func (b *Builder) Build(rows []*domain.ShortInterestRow, items []*domain.EvidenceItem) *Snapshot {
	nowUTC := b.now().UTC()
	snap := &Snapshot{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   nowUTC.Format(time.RFC3339),
		SnapshotDate:  nowUTC.Format("2006-01-02"),
		Note:          "Pro-metrics are PROXY estimates derived from short interest, not real borrow or utilization data.",
		Tickers:       make(map[string]*TickerSnapshot),
	}
	cutoff := nowUTC.AddDate(0, 0, -NewsWindowDays).Format("2006-01-02")

	byTicker := make(map[string][]*domain.ShortInterestRow)
	for _, r := range rows {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	for _, ticker := range domain.FocusTickers {
		tickerRows := byTicker[ticker]
		if len(tickerRows) == 0 {
			snap.Tickers[ticker] = &TickerSnapshot{Ticker: ticker, Error: "NO_SHORT_INTEREST_DATA"}
			continue
		}
		sort.Slice(tickerRows, func(i, j int) bool { return tickerRows[i].Day < tickerRows[j].Day })
		latest := tickerRows[len(tickerRows)-1]

		ts := &TickerSnapshot{
			Ticker:           ticker,
			SnapshotDate:     snap.SnapshotDate,
			LatestDate:       latest.Day,
			ShortInterestPct: round2(latest.ShortInterestPct),
			CrowdedScore:     round2(latest.CrowdedScore),
			SqueezeScore:     round2(latest.SqueezeScore),
			ProMetrics: ProMetricsProxy{
				DaysToCover:      daysToCoverProxy(latest.ShortInterestPct),
				BorrowFeePctEst:  round2(math.Min(50.0, latest.ShortInterestPct*0.8)),
				ProxyLabel:       ProxyLabel,
				UtilizationProxy: round2(math.Min(100.0, latest.ShortInterestPct*2.5)),
			},
		}

		var sentiments []float64
		providers := make(map[string]struct{})
		for _, it := range items {
			if it.Ticker != ticker {
				continue
			}
			day, ok := domain.DayKeyUTC(it.PublishedAt)
			if !ok || day < cutoff {
				continue
			}
			switch it.SourceKind {
			case domain.SourceInstitutional:
				ts.News30d.Count++
				sentiments = append(sentiments, it.Sentiment)
				providers[it.Provider] = struct{}{}
			case domain.SourceRetail:
				ts.Retail30d.Count++
			}
		}
		ts.News30d.UniqueProviders = len(providers)
		if len(sentiments) > 0 {
			ts.News30d.AvgSentiment = round4(mean(sentiments))
		}
		if len(sentiments) > 1 {
			ts.News30d.SentimentStd = round4(sampleStd(sentiments))
		}

		// Shock proxy: coverage volume scaled by sentiment strength and
		// provider diversity.
		novelty := float64(len(providers)) / math.Max(float64(ts.News30d.Count), 1)
		ts.SnapShockScore = round2(float64(ts.News30d.Count) * math.Abs(ts.News30d.AvgSentiment) * novelty * 10)

		snap.Tickers[ticker] = ts
	}
	return snap
}

// daysToCoverProxy estimates days-to-cover as SI% over assumed daily float
// turnover.
func daysToCoverProxy(siPct float64) float64 {
	if siPct <= 0 {
		return 0.0
	}
	return round2(siPct / (avgFloatTurnover * 100))
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64) float64 {
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
