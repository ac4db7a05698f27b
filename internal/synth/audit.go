package synth

import (
	"fmt"

	"equity-noise-lab/internal/validation"
)

// Check is one fidelity assertion over a synthetic series.
type Check struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`
	Note string `json:"note"`
}

// AuditReport scores how faithfully a synthetic series reproduces the
// structural properties observed in real squeeze data.
type AuditReport struct {
	Ticker          string   `json:"ticker"`
	FidelityScore   float64  `json:"fidelity_score"`
	Checks          []Check  `json:"checks"`
	Recommendations []string `json:"recommendations"`
}

// Audit runs the fidelity checks: a buildup-then-collapse short-interest
// shape, sentiment clustering on collapse days, and a positive
// sentiment/volatility correlation. The score is the percentage of passing
// checks.
func Audit(ticker string, rows []Row) *AuditReport {
	rep := &AuditReport{Ticker: ticker}
	if len(rows) < 2 {
		rep.Checks = append(rep.Checks, Check{
			Name: "series_length",
			Pass: false,
			Note: fmt.Sprintf("only %d rows, need at least 2", len(rows)),
		})
		return rep
	}

	diffs := make([]float64, len(rows))
	maxDrop := 0.0
	for i := 1; i < len(rows); i++ {
		diffs[i] = rows[i].NormShortInterest - rows[i-1].NormShortInterest
		if diffs[i] < maxDrop {
			maxDrop = diffs[i]
		}
	}
	rep.Checks = append(rep.Checks, Check{
		Name: "si_shape_buildup_then_drop",
		Pass: maxDrop < -10.0,
		Note: fmt.Sprintf("detected max short-interest drop of %.2f%%", maxDrop),
	})

	var dropSum, dropN, normSum, normN float64
	for i := 1; i < len(rows); i++ {
		if diffs[i] < -1.0 {
			dropSum += rows[i].AggSentimentScore
			dropN++
		} else {
			normSum += rows[i].AggSentimentScore
			normN++
		}
	}
	avgDrop, avgNorm := 0.0, 0.0
	if dropN > 0 {
		avgDrop = dropSum / dropN
	}
	if normN > 0 {
		avgNorm = normSum / normN
	}
	rep.Checks = append(rep.Checks, Check{
		Name: "sentiment_clusters_around_event",
		Pass: dropN > 0 && avgDrop > avgNorm,
		Note: fmt.Sprintf("avg sentiment on drop days: %.3f vs normal: %.3f", avgDrop, avgNorm),
	})

	sent := make([]float64, len(rows))
	vol := make([]float64, len(rows))
	for i, r := range rows {
		sent[i] = r.AggSentimentScore
		vol[i] = r.PriceVolatility
	}
	corr := validation.PearsonLag(sent, vol, 0)
	rep.Checks = append(rep.Checks, Check{
		Name: "corr_sentiment_to_vol",
		Pass: corr > 0.4,
		Note: fmt.Sprintf("correlation: %.3f", corr),
	})

	passed := 0
	for _, c := range rep.Checks {
		if c.Pass {
			passed++
		}
	}
	rep.FidelityScore = float64(passed) / float64(len(rep.Checks)) * 100
	rep.Recommendations = []string{
		"Increase noise in returns for higher realism.",
		"Add weekend gap logic to dates.",
	}
	return rep
}
