package render

import (
	"testing"

	"equity-noise-lab/internal/domain"
)

func vp(widthPx float64, start, end string) Viewport {
	return Viewport{Ticker: "TSLA", WidthPx: widthPx, WindowStart: start, WindowEnd: end}
}

func ev(day string) domain.FlagEvent {
	return domain.FlagEvent{Ticker: "TSLA", Day: day, Reason: "black-swan day"}
}

func TestSelectMode_Boundaries(t *testing.T) {
	cases := []struct {
		ppd  float64
		want domain.RenderMode
	}{
		{20, domain.ModeIndividual},
		{14, domain.ModeIndividual}, // inclusive
		{13.99, domain.ModeCluster},
		{10, domain.ModeCluster},
		{6, domain.ModeCluster}, // inclusive
		{5.99, domain.ModeBand},
		{0, domain.ModeBand},
	}
	for _, c := range cases {
		if got := SelectMode(c.ppd); got != c.want {
			t.Errorf("ppd=%v: expected %s, got %s", c.ppd, c.want, got)
		}
	}
}

func TestRender_IndividualMode(t *testing.T) {
	// 10 days at 200px → 20 ppd.
	viewport := vp(200, "2024-01-01", "2024-01-10")
	events := []domain.FlagEvent{ev("2024-01-02"), ev("2024-01-07")}

	view := Render(events, viewport)

	if view.Mode != domain.ModeIndividual {
		t.Fatalf("expected INDIVIDUAL, got %s", view.Mode)
	}
	if len(view.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(view.Groups))
	}
	g := view.Groups[0]
	if g.Count != 1 || g.AnchorDay != "2024-01-02" {
		t.Errorf("unexpected group %+v", g)
	}
	wantKey := "TSLA-2024-01-01-2024-01-10-2024-01-02-FLAG"
	if g.StableKey != wantKey {
		t.Errorf("expected key %s, got %s", wantKey, g.StableKey)
	}
}

// Greedy merge example: events on days 1, 2, 3 at pixel offsets 0, 10, 40
// with a 12px merge distance produce {day1, day2} and {day3}.
func TestRender_ClusterMergeByPixelDistance(t *testing.T) {
	positions := map[string]float64{
		"2024-01-01": 0,
		"2024-01-02": 10,
		"2024-01-03": 40,
	}
	// 10 days at 100px → 10 ppd → CLUSTER.
	viewport := vp(100, "2024-01-01", "2024-01-10")
	viewport.PositionOf = func(day string) float64 { return positions[day] }

	events := []domain.FlagEvent{ev("2024-01-01"), ev("2024-01-02"), ev("2024-01-03")}
	view := Render(events, viewport)

	if view.Mode != domain.ModeCluster {
		t.Fatalf("expected CLUSTER, got %s", view.Mode)
	}
	if len(view.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(view.Groups))
	}

	first := view.Groups[0]
	if first.Count != 2 || first.AnchorDay != "2024-01-01" {
		t.Errorf("unexpected first cluster %+v", first)
	}
	if first.MemberDays[1] != "2024-01-02" {
		t.Errorf("expected day2 merged into first cluster, got %v", first.MemberDays)
	}
	wantKey := "TSLA-2024-01-01-2024-01-10-2024-01-01-CLUSTER"
	if first.StableKey != wantKey {
		t.Errorf("expected key %s, got %s", wantKey, first.StableKey)
	}

	second := view.Groups[1]
	if second.Count != 1 || second.AnchorDay != "2024-01-03" {
		t.Errorf("unexpected second cluster %+v", second)
	}
	if second.Mode != domain.ModeCluster {
		t.Error("a singleton group in cluster mode stays mode CLUSTER")
	}
}

func TestRender_BandMode(t *testing.T) {
	// 100 days at 100px → 1 ppd → BAND.
	viewport := vp(100, "2024-01-01", "2024-04-09")
	events := []domain.FlagEvent{ev("2024-01-05")}

	view := Render(events, viewport)

	if view.Mode != domain.ModeBand {
		t.Fatalf("expected BAND, got %s", view.Mode)
	}
	if len(view.Groups) != 0 {
		t.Error("band mode must not produce discrete groups")
	}
	if len(view.Band) != len(viewport.Days()) {
		t.Fatalf("expected a cell for every visible day, got %d", len(view.Band))
	}

	for _, cell := range view.Band {
		if cell.Day == "2024-01-05" {
			if cell.Intensity != BandHighIntensity || !cell.HasEvent {
				t.Errorf("expected high-intensity event cell, got %+v", cell)
			}
		} else if cell.Intensity != BandLowIntensity {
			t.Errorf("day %s: expected baseline intensity, got %f", cell.Day, cell.Intensity)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	viewport := vp(100, "2024-01-01", "2024-01-10")
	events := []domain.FlagEvent{ev("2024-01-03"), ev("2024-01-04"), ev("2024-01-09")}

	a := Render(events, viewport)
	b := Render(events, viewport)

	if a.Mode != b.Mode || len(a.Groups) != len(b.Groups) {
		t.Fatal("re-rendering the same window must yield the same view")
	}
	for i := range a.Groups {
		if a.Groups[i].StableKey != b.Groups[i].StableKey {
			t.Errorf("stable key changed between renders: %s vs %s",
				a.Groups[i].StableKey, b.Groups[i].StableKey)
		}
	}
}

func TestRender_EventsOutsideWindowIgnored(t *testing.T) {
	viewport := vp(200, "2024-01-01", "2024-01-10")
	events := []domain.FlagEvent{ev("2023-12-31"), ev("2024-01-05"), ev("2024-02-01")}

	view := Render(events, viewport)

	if len(view.Groups) != 1 || view.Groups[0].AnchorDay != "2024-01-05" {
		t.Errorf("expected only the in-window event, got %+v", view.Groups)
	}
}

func TestRender_SameDayEventsCollapse(t *testing.T) {
	viewport := vp(200, "2024-01-01", "2024-01-10")
	events := []domain.FlagEvent{
		{Ticker: "TSLA", Day: "2024-01-05", Reason: "black-swan day"},
		{Ticker: "TSLA", Day: "2024-01-05", Reason: "noise index spike 92.00"},
	}

	view := Render(events, viewport)

	if len(view.Groups) != 1 {
		t.Fatalf("expected same-day events collapsed into 1 group, got %d", len(view.Groups))
	}
}

func TestDayAtPixel(t *testing.T) {
	viewport := vp(100, "2024-01-01", "2024-01-10") // 10 days, 10px each

	if got := DayAtPixel(viewport, 0); got != "2024-01-01" {
		t.Errorf("x=0: expected first day, got %s", got)
	}
	if got := DayAtPixel(viewport, 15); got != "2024-01-02" {
		t.Errorf("x=15: expected second day, got %s", got)
	}
	if got := DayAtPixel(viewport, 999); got != "2024-01-10" {
		t.Errorf("overflow clamps to last day, got %s", got)
	}
	if got := DayAtPixel(viewport, -5); got != "2024-01-01" {
		t.Errorf("negative clamps to first day, got %s", got)
	}
}

func TestViewport_Days(t *testing.T) {
	days := vp(100, "2024-02-27", "2024-03-02").Days() // leap year crossing
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: expected %s, got %s", i, want[i], days[i])
		}
	}

	if vp(100, "2024-01-10", "2024-01-01").Days() != nil {
		t.Error("inverted window must yield no days")
	}
}

func TestBuildFlagEvents(t *testing.T) {
	series := []*domain.NoiseSeriesPoint{
		{Ticker: "TSLA", Day: "2024-01-01", NoiseIndex: 50},
		{Ticker: "TSLA", Day: "2024-01-02", NoiseIndex: 85},
		{Ticker: "TSLA", Day: "2024-01-03", NoiseIndex: 40, IsSwan: true},
		{Ticker: "TSLA", Day: "2024-01-04", NoiseIndex: 95, IsSwan: true},
		{Ticker: "TSLA", Day: "2024-02-01", NoiseIndex: 99}, // outside window
	}

	events := BuildFlagEvents(series, "2024-01-01", "2024-01-31")

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Day != "2024-01-02" || events[1].Day != "2024-01-03" || events[2].Day != "2024-01-04" {
		t.Errorf("unexpected event days: %+v", events)
	}
	if events[0].WindowStart != "2024-01-01" || events[0].WindowEnd != "2024-01-31" {
		t.Errorf("expected window scoping on events, got %+v", events[0])
	}
}
