package validation

import (
	"math"

	"equity-noise-lab/internal/domain"
)

// The 48h lag is 2 steps on a daily series.
const LagDays = 2

// A lagged correlation above this supports the leading-indicator hypothesis.
const HypothesisThreshold = 0.1

// Report summarizes how a ticker's Noise Index relates to its short-interest
// reference series, same-day and at a 48h forward lag.
type Report struct {
	Ticker string `json:"ticker"`

	// Same-day correlations.
	CorrNoiseCrowded float64 `json:"corr_noise_crowded"`
	CorrNoiseSqueeze float64 `json:"corr_noise_squeeze"`

	// 48h lag: noise(t) vs reference(t+2) - reference(t).
	CorrNoiseDeltaSI      float64 `json:"corr_noise_to_delta_si_48h"`
	CorrNoiseDeltaCrowded float64 `json:"corr_noise_to_delta_crowded_48h"`

	UsablePairs        int    `json:"usable_pairs"`
	SupportsHypothesis bool   `json:"supports_hypothesis"`
	Interpretation     string `json:"interpretation"`
}

// Validate aligns a Noise Index series with short-interest rows by day and
// computes the report. Days present in only one series are dropped from the
// comparison. Correlations are rounded to 4 decimals; insufficient data
// yields NaN fields and a false verdict, never an error.
func Validate(ticker string, series []*domain.NoiseSeriesPoint, rows []*domain.ShortInterestRow) *Report {
	byDay := make(map[string]*domain.ShortInterestRow, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	var noise, si, crowded, squeeze []float64
	for _, p := range series {
		r, ok := byDay[p.Day]
		if !ok {
			continue
		}
		noise = append(noise, p.NoiseIndex)
		si = append(si, r.ShortInterestPct)
		crowded = append(crowded, r.CrowdedScore)
		squeeze = append(squeeze, r.SqueezeScore)
	}

	rep := &Report{Ticker: ticker, UsablePairs: len(noise)}
	rep.CorrNoiseCrowded = round4(PearsonLag(noise, crowded, 0))
	rep.CorrNoiseSqueeze = round4(PearsonLag(noise, squeeze, 0))
	rep.CorrNoiseDeltaSI = round4(PearsonLag(noise, deltas(si, LagDays), 0))
	rep.CorrNoiseDeltaCrowded = round4(PearsonLag(noise, deltas(crowded, LagDays), 0))

	rep.SupportsHypothesis = rep.CorrNoiseDeltaSI > HypothesisThreshold ||
		rep.CorrNoiseDeltaCrowded > HypothesisThreshold

	if rep.SupportsHypothesis {
		rep.Interpretation = "The combined Noise Index shows a positive leading correlation with future short interest changes."
	} else {
		rep.Interpretation = "The combined Noise Index shows a weak leading correlation with future short interest changes."
	}

	return rep
}

// deltas returns xs[i+lag] - xs[i] for every index with a forward value;
// trailing positions with no forward value are omitted.
func deltas(xs []float64, lag int) []float64 {
	if len(xs) <= lag {
		return nil
	}
	out := make([]float64, 0, len(xs)-lag)
	for i := 0; i+lag < len(xs); i++ {
		out = append(out, xs[i+lag]-xs[i])
	}
	return out
}

func round4(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*10000) / 10000
}
