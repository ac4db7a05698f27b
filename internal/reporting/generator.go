package reporting

import (
	"context"
	"math"
	"sort"
	"time"

	"equity-noise-lab/internal/discovery"
	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/render"
	"equity-noise-lab/internal/storage"
	"equity-noise-lab/internal/validation"
)

// Generator produces reports from stored data.
type Generator struct {
	evidenceStore      storage.EvidenceStore
	shortInterestStore storage.ShortInterestStore
	noiseSeriesStore   storage.NoiseSeriesStore
	tickers            []string
	now                func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator covering domain.FocusTickers.
func NewGenerator(
	evidenceStore storage.EvidenceStore,
	shortInterestStore storage.ShortInterestStore,
	noiseSeriesStore storage.NoiseSeriesStore,
) *Generator {
	return &Generator{
		evidenceStore:      evidenceStore,
		shortInterestStore: shortInterestStore,
		noiseSeriesStore:   noiseSeriesStore,
		tickers:            domain.FocusTickers,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTickers overrides the default ticker list.
func (g *Generator) WithTickers(tickers []string) *Generator {
	g.tickers = tickers
	return g
}

// Generate produces a complete pipeline report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	report := &Report{
		GeneratedAt: g.now(),
		TickerCount: len(g.tickers),
	}

	flagCounts := make(map[string]int)

	for _, ticker := range g.tickers {
		items, err := g.evidenceStore.GetByTicker(ctx, ticker)
		if err != nil {
			return nil, err
		}
		g.tallyEvidence(report, items, flagCounts)

		series, err := g.noiseSeriesStore.GetByTicker(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(series) > 0 {
			report.SeriesSummaries = append(report.SeriesSummaries, summarizeSeries(ticker, series))
			report.DataSummary.SeriesPoints += len(series)
			updateDateRange(&report.DataSummary, series)
		}

		rows, err := g.shortInterestStore.GetByTicker(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(series) > 0 {
			report.ValidationRows = append(report.ValidationRows, validationRow(validation.Validate(ticker, series, rows)))
		}
		if peaks := discovery.FindPeaks(ticker, rows); peaks != nil {
			for _, p := range peaks.Peaks {
				report.SqueezePeaks = append(report.SqueezePeaks, SqueezePeakRow{
					Ticker:           ticker,
					Rank:             p.Rank,
					Day:              p.Day,
					SqueezeScore:     p.SqueezeScore,
					CrowdedScore:     p.CrowdedScore,
					VolatilityRegime: p.VolatilityRegime,
				})
			}
		}
	}

	report.DataQuality.FlagCounts = sortedFlagCounts(flagCounts)

	sort.Slice(report.SeriesSummaries, func(i, j int) bool {
		return report.SeriesSummaries[i].Ticker < report.SeriesSummaries[j].Ticker
	})
	sort.Slice(report.ValidationRows, func(i, j int) bool {
		return report.ValidationRows[i].Ticker < report.ValidationRows[j].Ticker
	})
	sort.Slice(report.SqueezePeaks, func(i, j int) bool {
		if report.SqueezePeaks[i].Ticker != report.SqueezePeaks[j].Ticker {
			return report.SqueezePeaks[i].Ticker < report.SqueezePeaks[j].Ticker
		}
		return report.SqueezePeaks[i].Rank < report.SqueezePeaks[j].Rank
	})

	return report, nil
}

func (g *Generator) tallyEvidence(report *Report, items []*domain.EvidenceItem, flagCounts map[string]int) {
	report.DataSummary.TotalEvidence += len(items)
	for _, item := range items {
		switch item.SourceKind {
		case domain.SourceRetail:
			report.DataSummary.RetailItems++
		default:
			report.DataSummary.InstitutionalItems++
		}
		if len(item.Flags) > 0 {
			report.DataQuality.FlaggedItems++
		}
		for _, f := range item.Flags {
			flagCounts[f]++
		}
	}
}

// summarizeSeries reduces a day-ascending series to one summary row.
func summarizeSeries(ticker string, series []*domain.NoiseSeriesPoint) SeriesSummaryRow {
	row := SeriesSummaryRow{
		Ticker:   ticker,
		Days:     len(series),
		FirstDay: series[0].Day,
		LastDay:  series[len(series)-1].Day,
		MaxIndex: math.Inf(-1),
	}

	var sum float64
	for _, p := range series {
		sum += p.NoiseIndex
		if p.NoiseIndex > row.MaxIndex {
			row.MaxIndex = p.NoiseIndex
			row.MaxIndexDay = p.Day
		}
		if p.IsSwan {
			row.SwanDays++
		}
		if p.NoiseIndex >= render.SpikeIndexThreshold {
			row.SpikeDays++
		}
	}
	row.MeanIndex = math.Round(sum/float64(len(series))*100) / 100

	return row
}

func updateDateRange(summary *DataSummary, series []*domain.NoiseSeriesPoint) {
	first, last := series[0].Day, series[len(series)-1].Day
	if summary.DateRangeStart == "" || first < summary.DateRangeStart {
		summary.DateRangeStart = first
	}
	if last > summary.DateRangeEnd {
		summary.DateRangeEnd = last
	}
}

func validationRow(rep *validation.Report) ValidationRow {
	return ValidationRow{
		Ticker:                rep.Ticker,
		CorrNoiseCrowded:      rep.CorrNoiseCrowded,
		CorrNoiseSqueeze:      rep.CorrNoiseSqueeze,
		CorrNoiseDeltaSI:      rep.CorrNoiseDeltaSI,
		CorrNoiseDeltaCrowded: rep.CorrNoiseDeltaCrowded,
		UsablePairs:           rep.UsablePairs,
		SupportsHypothesis:    rep.SupportsHypothesis,
	}
}

// sortedFlagCounts flattens the tally map into rows sorted by flag name.
func sortedFlagCounts(counts map[string]int) []FlagCountRow {
	rows := make([]FlagCountRow, 0, len(counts))
	for flag, n := range counts {
		rows = append(rows, FlagCountRow{Flag: flag, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Flag < rows[j].Flag })
	return rows
}
