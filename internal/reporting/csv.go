package reporting

import (
	"fmt"
	"strings"

	"equity-noise-lab/internal/domain"
)

// RenderSeriesCSV renders Noise Index points as CSV string.
func RenderSeriesCSV(points []*domain.NoiseSeriesPoint) string {
	var sb strings.Builder

	sb.WriteString("ticker,day,news_volume_norm,retail_volume_norm,")
	sb.WriteString("avg_news_sentiment,avg_retail_hype,z_score,noise_index,is_swan\n")

	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.4f,%.4f,%.4f,%.2f,%t\n",
			p.Ticker,
			p.Day,
			p.NewsVolumeNorm,
			p.RetailVolumeNorm,
			p.AvgNewsSentiment,
			p.AvgRetailHype,
			p.ZScore,
			p.NoiseIndex,
			p.IsSwan,
		))
	}

	return sb.String()
}

// RenderValidationCSV renders correlation validation rows as CSV string.
func RenderValidationCSV(rows []ValidationRow) string {
	var sb strings.Builder

	sb.WriteString("ticker,corr_noise_crowded,corr_noise_squeeze,")
	sb.WriteString("corr_noise_to_delta_si_48h,corr_noise_to_delta_crowded_48h,")
	sb.WriteString("usable_pairs,supports_hypothesis\n")

	for _, v := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.4f,%.4f,%.4f,%.4f,%d,%t\n",
			v.Ticker,
			v.CorrNoiseCrowded,
			v.CorrNoiseSqueeze,
			v.CorrNoiseDeltaSI,
			v.CorrNoiseDeltaCrowded,
			v.UsablePairs,
			v.SupportsHypothesis,
		))
	}

	return sb.String()
}
