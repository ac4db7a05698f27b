package domain

// DailySignalBucket aggregates deduplicated evidence for one (ticker, UTC day).
// Corresponds to daily_signal_buckets table in ClickHouse.
// Buckets are immutable once built; a new evidence batch rebuilds them wholesale.
type DailySignalBucket struct {
	Ticker              string
	Day                 string // "YYYY-MM-DD" UTC
	NewsCount           int
	NewsSentimentSum    float64
	NewsSentimentN      int // incremented together with NewsCount
	RetailEngagementSum float64
	RetailHypeSum       float64
	RetailCount         int
	IsSwanDay           bool
}

// AvgNewsSentiment returns the mean sentiment of news items in the bucket,
// or 0 for a day with no news items (never NaN).
func (b *DailySignalBucket) AvgNewsSentiment() float64 {
	if b.NewsSentimentN == 0 {
		return 0
	}
	return b.NewsSentimentSum / float64(b.NewsSentimentN)
}

// AvgRetailHype returns the mean hype magnitude capped at 1, or 0 for a day
// with no retail items.
func (b *DailySignalBucket) AvgRetailHype() float64 {
	if b.RetailCount == 0 {
		return 0
	}
	avg := b.RetailHypeSum / float64(b.RetailCount)
	if avg > 1 {
		return 1
	}
	return avg
}
