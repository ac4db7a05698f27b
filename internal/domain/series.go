package domain

// NoiseSeriesPoint is one day's entry in a ticker's Noise Index series.
// Corresponds to noise_series table in ClickHouse.
// NoiseIndex = (clamp(z, -5, 5) + 5) * 10, so it is always within [0, 100].
type NoiseSeriesPoint struct {
	Ticker           string
	Day              string  // "YYYY-MM-DD" UTC
	NewsVolumeNorm   float64 // news_count / max news_count over the series, 0..1
	RetailVolumeNorm float64 // retail_engagement_sum / max over the series, 0..1
	AvgNewsSentiment float64
	AvgRetailHype    float64 // 0..1
	RawCombined      float64 // 0.6*news_volume_norm + 0.4*retail_volume_norm
	ZScore           float64 // against whole-series population mean/std
	NoiseIndex       float64 // 0..100, rounded to 2 decimals
	IsSwan           bool
}

// ShortInterestRow is one day of the external short-interest reference series.
// Corresponds to short_interest table in PostgreSQL.
type ShortInterestRow struct {
	Ticker           string
	Day              string // "YYYY-MM-DD"
	ShortInterestPct float64
	CrowdedScore     float64
	SqueezeScore     float64
	Utilization      float64
	BorrowCost       float64
}
