package render

import (
	"fmt"

	"equity-noise-lab/internal/domain"
)

// A day whose noise index reaches this level is flagged as a spike even when
// it is not a swan day.
const SpikeIndexThreshold = 80.0

// BuildFlagEvents derives renderable flag events from a noise series for a
// visible window: every swan day, plus every day whose index crosses the
// spike threshold. The underlying series is never mutated; the window scopes
// the events' stable keys.
func BuildFlagEvents(series []*domain.NoiseSeriesPoint, windowStart, windowEnd string) []domain.FlagEvent {
	var events []domain.FlagEvent
	for _, p := range series {
		if p.Day < windowStart || p.Day > windowEnd {
			continue
		}
		var reason string
		switch {
		case p.IsSwan && p.NoiseIndex >= SpikeIndexThreshold:
			reason = fmt.Sprintf("black-swan day; noise index %.2f", p.NoiseIndex)
		case p.IsSwan:
			reason = "black-swan day"
		case p.NoiseIndex >= SpikeIndexThreshold:
			reason = fmt.Sprintf("noise index spike %.2f", p.NoiseIndex)
		default:
			continue
		}
		events = append(events, domain.FlagEvent{
			Ticker:      p.Ticker,
			Day:         p.Day,
			Reason:      reason,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
		})
	}
	return events
}
