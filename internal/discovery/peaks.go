// Package discovery ranks short-interest pressure peaks per ticker and tags
// each peak with a local volatility regime. Peaks seed the manual review
// queue before the noise pipeline runs.
package discovery

import (
	"math"
	"sort"

	"equity-noise-lab/internal/domain"
)

// Volatility regime of a peak's local window relative to the full series.
const (
	RegimeHigh   = "HIGH"
	RegimeNormal = "NORMAL"
	RegimeLow    = "LOW"
)

const (
	// TopPeaks is how many squeeze-score peaks are reported per ticker.
	TopPeaks = 3
	// LocalWindow is the half-width, in rows, of the window used for the
	// local volatility estimate around each peak.
	LocalWindow = 5

	highVolFactor = 1.5
	lowVolFactor  = 0.5
)

// Peak is one ranked short-interest pressure point.
type Peak struct {
	Rank             int     `json:"rank"`
	Day              string  `json:"date"`
	SqueezeScore     float64 `json:"squeeze_score"`
	CrowdedScore     float64 `json:"crowded_score"`
	VolatilityRegime string  `json:"volatility_regime"`
}

// Report is the discovery output for one ticker.
type Report struct {
	Ticker    string `json:"ticker"`
	Peaks     []Peak `json:"peaks"`
	DateRange struct {
		Min string `json:"min"`
		Max string `json:"max"`
	} `json:"date_range"`
}

// FindPeaks ranks the top squeeze-score days for a ticker and classifies
// each peak's volatility regime from day-over-day squeeze-score returns.
// Rows are re-sorted by day; nil is returned for an empty series.
func FindPeaks(ticker string, rows []*domain.ShortInterestRow) *Report {
	if len(rows) == 0 {
		return nil
	}

	sorted := make([]*domain.ShortInterestRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

	// returns[i] pairs with sorted[i]; index 0 has no prior day.
	returns := make([]float64, len(sorted))
	returns[0] = math.NaN()
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1].SqueezeScore
		if prev == 0 {
			returns[i] = math.NaN()
			continue
		}
		returns[i] = (sorted[i].SqueezeScore - prev) / prev
	}
	globalVol := sampleStd(returns)

	order := make([]int, len(sorted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sorted[order[a]].SqueezeScore > sorted[order[b]].SqueezeScore
	})

	rep := &Report{Ticker: ticker}
	rep.DateRange.Min = sorted[0].Day
	rep.DateRange.Max = sorted[len(sorted)-1].Day

	n := TopPeaks
	if len(order) < n {
		n = len(order)
	}
	for rank := 0; rank < n; rank++ {
		idx := order[rank]
		lo := idx - LocalWindow
		if lo < 0 {
			lo = 0
		}
		hi := idx + LocalWindow
		if hi > len(sorted) {
			hi = len(sorted)
		}
		localVol := sampleStd(returns[lo:hi])

		regime := RegimeNormal
		switch {
		case localVol > globalVol*highVolFactor:
			regime = RegimeHigh
		case localVol < globalVol*lowVolFactor:
			regime = RegimeLow
		}

		rep.Peaks = append(rep.Peaks, Peak{
			Rank:             rank + 1,
			Day:              sorted[idx].Day,
			SqueezeScore:     sorted[idx].SqueezeScore,
			CrowdedScore:     sorted[idx].CrowdedScore,
			VolatilityRegime: regime,
		})
	}
	return rep
}

// sampleStd is the sample standard deviation (N-1 denominator) of the finite
// values in xs; NaN entries are skipped. Returns 0 when fewer than two values
// remain.
func sampleStd(xs []float64) float64 {
	var vals []float64
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			vals = append(vals, x)
		}
	}
	if len(vals) < 2 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}
