// Package noiseindex turns per-day signal buckets into a bounded 0-100 Noise
// Index series. The index is relative-to-history: z-scores use the whole
// series' population mean/std, so a day is "noisy" only relative to how noisy
// the ticker's own history has been. The computation is global, not streaming:
// any new day forces a full recompute, and single points must never be patched
// in place.
package noiseindex

import (
	"math"
	"sort"

	"equity-noise-lab/internal/domain"
)

// Combination weights and z clamp. Fixed constants: news volume is weighted
// above retail engagement, reflecting institutional signal priority.
const (
	NewsWeight   = 0.6
	RetailWeight = 0.4
	ZClamp       = 5.0
)

// BuildSeries computes the full Noise Index series for one ticker from its
// sparse day->bucket mapping, ordered by ascending day. An empty mapping
// yields an empty series, never an error. A zero-variance series yields
// z-score 0 for every day (noise index 50.00).
func BuildSeries(ticker string, buckets map[string]*domain.DailySignalBucket) []*domain.NoiseSeriesPoint {
	if len(buckets) == 0 {
		return nil
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	// Series-wide maxima with a floor of 1 so an all-empty series cannot
	// divide by zero.
	maxNews := 1.0
	maxRetail := 1.0
	for _, day := range days {
		b := buckets[day]
		if float64(b.NewsCount) > maxNews {
			maxNews = float64(b.NewsCount)
		}
		if b.RetailEngagementSum > maxRetail {
			maxRetail = b.RetailEngagementSum
		}
	}

	points := make([]*domain.NoiseSeriesPoint, 0, len(days))
	raw := make([]float64, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		newsNorm := float64(b.NewsCount) / maxNews
		retailNorm := b.RetailEngagementSum / maxRetail
		combined := NewsWeight*newsNorm + RetailWeight*retailNorm
		raw = append(raw, combined)
		points = append(points, &domain.NoiseSeriesPoint{
			Ticker:           ticker,
			Day:              day,
			NewsVolumeNorm:   round4(newsNorm),
			RetailVolumeNorm: round4(retailNorm),
			AvgNewsSentiment: round4(b.AvgNewsSentiment()),
			AvgRetailHype:    round4(b.AvgRetailHype()),
			RawCombined:      combined,
			IsSwan:           b.IsSwanDay,
		})
	}

	mean := populationMean(raw)
	std := populationStd(raw, mean)

	for i, p := range points {
		z := 0.0
		if std > 0 {
			z = (raw[i] - mean) / std
		}
		p.ZScore = round4(z)
		p.NoiseIndex = round2((clamp(z, -ZClamp, ZClamp) + ZClamp) * 10)
	}

	return points
}

func populationMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func populationStd(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
