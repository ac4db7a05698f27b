package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Noise Index Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Tickers: %d\n\n", r.TickerCount))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Evidence | %d |\n", r.DataSummary.TotalEvidence))
	sb.WriteString(fmt.Sprintf("| Institutional Items | %d |\n", r.DataSummary.InstitutionalItems))
	sb.WriteString(fmt.Sprintf("| Retail Items | %d |\n", r.DataSummary.RetailItems))
	sb.WriteString(fmt.Sprintf("| Series Points | %d |\n", r.DataSummary.SeriesPoints))
	sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", r.DataSummary.DateRangeStart))
	sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", r.DataSummary.DateRangeEnd))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.FlagCounts) > 0 {
		sb.WriteString(fmt.Sprintf("Flagged items: %d of %d\n\n",
			r.DataQuality.FlaggedItems, r.DataSummary.TotalEvidence))
		sb.WriteString("| Flag | Count |\n")
		sb.WriteString("|------|-------|\n")
		for _, fc := range r.DataQuality.FlagCounts {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", fc.Flag, fc.Count))
		}
	} else {
		sb.WriteString("No quality flags recorded.\n")
	}
	sb.WriteString("\n")

	// Noise Index Summary
	sb.WriteString("## Noise Index Summary\n\n")
	if len(r.SeriesSummaries) > 0 {
		sb.WriteString("| Ticker | Days | First | Last | Mean | Max | Max Day | Swan Days | Spike Days |\n")
		sb.WriteString("|--------|------|-------|------|------|-----|---------|-----------|------------|\n")
		for _, s := range r.SeriesSummaries {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %.2f | %.2f | %s | %d | %d |\n",
				s.Ticker, s.Days, s.FirstDay, s.LastDay,
				s.MeanIndex, s.MaxIndex, s.MaxIndexDay, s.SwanDays, s.SpikeDays))
		}
	} else {
		sb.WriteString("No scored series available.\n")
	}
	sb.WriteString("\n")

	// Correlation Validation
	sb.WriteString("## Correlation Validation\n\n")
	if len(r.ValidationRows) > 0 {
		sb.WriteString("| Ticker | Crowded | Squeeze | ΔSI 48h | ΔCrowded 48h | Pairs | Verdict |\n")
		sb.WriteString("|--------|---------|---------|---------|--------------|-------|--------|\n")
		for _, v := range r.ValidationRows {
			verdict := "WEAK"
			if v.SupportsHypothesis {
				verdict = "SUPPORTED"
			}
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %.4f | %d | %s |\n",
				v.Ticker, v.CorrNoiseCrowded, v.CorrNoiseSqueeze,
				v.CorrNoiseDeltaSI, v.CorrNoiseDeltaCrowded, v.UsablePairs, verdict))
		}
	} else {
		sb.WriteString("No validation results available.\n")
	}
	sb.WriteString("\n")

	// Squeeze Peaks
	sb.WriteString("## Squeeze Peaks\n\n")
	if len(r.SqueezePeaks) > 0 {
		sb.WriteString("| Ticker | Rank | Day | Squeeze | Crowded | Regime |\n")
		sb.WriteString("|--------|------|-----|---------|---------|--------|\n")
		for _, p := range r.SqueezePeaks {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %.2f | %.2f | %s |\n",
				p.Ticker, p.Rank, p.Day, p.SqueezeScore, p.CrowdedScore, p.VolatilityRegime))
		}
	} else {
		sb.WriteString("No squeeze peaks available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
