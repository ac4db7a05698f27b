package domain

// RenderMode is the flag-rendering mode selected purely from pixel density.
type RenderMode string

const (
	ModeIndividual RenderMode = "INDIVIDUAL"
	ModeCluster    RenderMode = "CLUSTER"
	ModeBand       RenderMode = "BAND"
)

// String returns the string representation of RenderMode.
func (m RenderMode) String() string {
	return string(m)
}

// FlagEvent is a date-anchored event candidate for rendering: a swan day or a
// day with a significant news/retail spike.
type FlagEvent struct {
	Ticker      string
	Day         string // "YYYY-MM-DD"
	Reason      string // human string naming the triggering signal
	WindowStart string // visible window this flag belongs to; scopes stable keys
	WindowEnd   string
}

// ClusterGroup is one visual unit emitted by the renderer in INDIVIDUAL or
// CLUSTER mode. Switching modes never drops or fabricates events, only
// changes how they are grouped.
type ClusterGroup struct {
	Mode       RenderMode
	AnchorDay  string   // click target / selection day
	MemberDays []string // ascending days folded into this group
	Count      int      // len(MemberDays)
	StableKey  string   // deterministic: ticker+window+anchor+mode suffix
}

// BandCell is one visible day's intensity in BAND mode. The band has no
// discrete click targets; the caller resolves clicks from cursor pixel
// position to a day.
type BandCell struct {
	Day       string
	Intensity float64
	HasEvent  bool
	Reason    string // reason of an event on this day, "" if none
}
