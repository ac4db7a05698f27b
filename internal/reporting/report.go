package reporting

import "time"

// Report represents the daily pipeline report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	TickerCount int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (evidence quality flag tallies)
	DataQuality DataQualitySection

	// Per-ticker Noise Index summaries (sorted by ticker)
	SeriesSummaries []SeriesSummaryRow

	// Correlation validation vs short-interest reference (sorted by ticker)
	ValidationRows []ValidationRow

	// Top squeeze-score days per ticker (sorted by ticker, rank)
	SqueezePeaks []SqueezePeakRow
}

// DataSummary contains data description.
type DataSummary struct {
	TotalEvidence      int
	InstitutionalItems int
	RetailItems        int
	SeriesPoints       int
	DateRangeStart     string // "YYYY-MM-DD"
	DateRangeEnd       string
}

// DataQualitySection tallies evidence quality flags.
type DataQualitySection struct {
	FlagCounts   []FlagCountRow
	FlaggedItems int
}

// FlagCountRow is one quality flag tally.
type FlagCountRow struct {
	Flag  string
	Count int
}

// SeriesSummaryRow summarizes one ticker's Noise Index series.
type SeriesSummaryRow struct {
	Ticker      string
	Days        int
	FirstDay    string
	LastDay     string
	MeanIndex   float64
	MaxIndex    float64
	MaxIndexDay string
	SwanDays    int
	SpikeDays   int // days at or above the spike threshold
}

// ValidationRow is one ticker's correlation validation result.
type ValidationRow struct {
	Ticker                string
	CorrNoiseCrowded      float64
	CorrNoiseSqueeze      float64
	CorrNoiseDeltaSI      float64
	CorrNoiseDeltaCrowded float64
	UsablePairs           int
	SupportsHypothesis    bool
}

// SqueezePeakRow is one ranked short-interest pressure point.
type SqueezePeakRow struct {
	Ticker           string
	Rank             int
	Day              string
	SqueezeScore     float64
	CrowdedScore     float64
	VolatilityRegime string
}
