// Package render selects how event flags are drawn on a time axis, purely
// from pixel density. Three mutually exclusive modes: individual markers,
// merged cluster badges, or a continuous density band. Mode selection has no
// hysteresis and is never a user toggle; the same window at the same width
// always yields the same mode and the same stable keys. Switching modes never
// drops or fabricates events, only regroups them.
package render

import (
	"fmt"
	"math"
	"sort"
	"time"

	"equity-noise-lab/internal/domain"
)

// Density thresholds (pixels per day) and the cluster merge distance.
// Fixed constants; animation and test stability depend on them.
const (
	PPDIndividual  = 14.0
	PPDCluster     = 6.0
	ClusterMergePx = 12.0
)

// Band intensities: high on event days, low baseline elsewhere.
const (
	BandHighIntensity = 0.8
	BandLowIntensity  = 0.05
)

// Viewport describes the visible window the caller is rendering into.
// PositionOf maps a day key to a horizontal pixel offset; when nil, days are
// laid out linearly at PixelsPerDay spacing. The 12px merge distance assumes
// the caller's layout, so cluster membership must be recomputed on every
// viewport change rather than cached.
type Viewport struct {
	Ticker      string
	WidthPx     float64
	WindowStart string // inclusive "YYYY-MM-DD"
	WindowEnd   string // inclusive "YYYY-MM-DD"
	PositionOf  func(day string) float64
}

// View is the renderer's tagged output: exactly one of Groups or Band is
// populated depending on Mode.
type View struct {
	Mode   domain.RenderMode
	Groups []domain.ClusterGroup // INDIVIDUAL and CLUSTER modes
	Band   []domain.BandCell     // BAND mode
}

// Days enumerates the visible calendar days, inclusive on both ends.
// An unparseable or inverted window yields nil.
func (vp Viewport) Days() []string {
	start, err1 := time.Parse("2006-01-02", vp.WindowStart)
	end, err2 := time.Parse("2006-01-02", vp.WindowEnd)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// PixelsPerDay is the sole driver of mode selection.
func (vp Viewport) PixelsPerDay() float64 {
	n := len(vp.Days())
	if n == 0 {
		return 0
	}
	return vp.WidthPx / float64(n)
}

// SelectMode maps pixel density to a rendering mode. Thresholds are
// inclusive: exactly 14 selects INDIVIDUAL, exactly 6 selects CLUSTER.
func SelectMode(pixelsPerDay float64) domain.RenderMode {
	switch {
	case pixelsPerDay >= PPDIndividual:
		return domain.ModeIndividual
	case pixelsPerDay >= PPDCluster:
		return domain.ModeCluster
	default:
		return domain.ModeBand
	}
}

// Render groups the window's flag events for the selected mode. Events
// outside the visible window are ignored; events sharing a day are collapsed
// into one (keys are day-scoped). The call is synchronous and stateless; the
// UI layer owns debouncing of resize events.
func Render(events []domain.FlagEvent, vp Viewport) *View {
	days := vp.Days()
	visible := collapseByDay(events, days)
	mode := SelectMode(vp.PixelsPerDay())

	switch mode {
	case domain.ModeIndividual:
		return &View{Mode: mode, Groups: individualGroups(visible, vp)}
	case domain.ModeCluster:
		return &View{Mode: mode, Groups: clusterGroups(visible, vp)}
	default:
		return &View{Mode: mode, Band: bandCells(visible, days)}
	}
}

// DayAtPixel resolves a click on the density band to the day under the
// cursor. Computed from pixel position, not from a precomputed group.
func DayAtPixel(vp Viewport, x float64) string {
	days := vp.Days()
	if len(days) == 0 {
		return ""
	}
	ppd := vp.WidthPx / float64(len(days))
	idx := 0
	if ppd > 0 {
		idx = int(math.Floor(x / ppd))
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(days) {
		idx = len(days) - 1
	}
	return days[idx]
}

func (vp Viewport) position(day string, dayIndex map[string]int) float64 {
	if vp.PositionOf != nil {
		return vp.PositionOf(day)
	}
	return float64(dayIndex[day]) * vp.PixelsPerDay()
}

// collapseByDay filters events to the visible window and folds same-day
// events into one, joining their reasons. Output is sorted by day ascending.
func collapseByDay(events []domain.FlagEvent, days []string) []domain.FlagEvent {
	inWindow := make(map[string]struct{}, len(days))
	for _, d := range days {
		inWindow[d] = struct{}{}
	}

	byDay := make(map[string]*domain.FlagEvent)
	for _, ev := range events {
		if _, ok := inWindow[ev.Day]; !ok {
			continue
		}
		if existing, ok := byDay[ev.Day]; ok {
			if ev.Reason != "" && ev.Reason != existing.Reason {
				existing.Reason += "; " + ev.Reason
			}
			continue
		}
		copied := ev
		byDay[ev.Day] = &copied
	}

	out := make([]domain.FlagEvent, 0, len(byDay))
	for _, ev := range byDay {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func individualGroups(events []domain.FlagEvent, vp Viewport) []domain.ClusterGroup {
	groups := make([]domain.ClusterGroup, 0, len(events))
	for _, ev := range events {
		groups = append(groups, domain.ClusterGroup{
			Mode:       domain.ModeIndividual,
			AnchorDay:  ev.Day,
			MemberDays: []string{ev.Day},
			Count:      1,
			StableKey:  fmt.Sprintf("%s-%s-%s-%s-FLAG", vp.Ticker, vp.WindowStart, vp.WindowEnd, ev.Day),
		})
	}
	return groups
}

// clusterGroups merges events greedily left to right: an event joins the open
// cluster when its pixel position is within ClusterMergePx of the cluster's
// most recent member, else it starts a new cluster. The anchor (click target)
// is the earliest member. A cluster of one stays mode CLUSTER; the UI renders
// it as a generic marker instead of a numeric badge.
func clusterGroups(events []domain.FlagEvent, vp Viewport) []domain.ClusterGroup {
	if len(events) == 0 {
		return nil
	}

	dayIndex := make(map[string]int)
	for i, d := range vp.Days() {
		dayIndex[d] = i
	}

	var groups []domain.ClusterGroup
	var members []string
	lastPos := 0.0

	flush := func() {
		first := members[0]
		groups = append(groups, domain.ClusterGroup{
			Mode:       domain.ModeCluster,
			AnchorDay:  first,
			MemberDays: members,
			Count:      len(members),
			StableKey:  fmt.Sprintf("%s-%s-%s-%s-CLUSTER", vp.Ticker, vp.WindowStart, vp.WindowEnd, first),
		})
	}

	for _, ev := range events {
		pos := vp.position(ev.Day, dayIndex)
		if members == nil {
			members = []string{ev.Day}
			lastPos = pos
			continue
		}
		if pos-lastPos <= ClusterMergePx {
			members = append(members, ev.Day)
			lastPos = pos
			continue
		}
		flush()
		members = []string{ev.Day}
		lastPos = pos
	}
	flush()

	return groups
}

func bandCells(events []domain.FlagEvent, days []string) []domain.BandCell {
	byDay := make(map[string]domain.FlagEvent, len(events))
	for _, ev := range events {
		byDay[ev.Day] = ev
	}

	cells := make([]domain.BandCell, 0, len(days))
	for _, day := range days {
		cell := domain.BandCell{Day: day, Intensity: BandLowIntensity}
		if ev, ok := byDay[day]; ok {
			cell.Intensity = BandHighIntensity
			cell.HasEvent = true
			cell.Reason = ev.Reason
		}
		cells = append(cells, cell)
	}
	return cells
}
