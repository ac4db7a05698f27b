package domain

import "time"

// SourceKind distinguishes institutional news coverage from retail chatter.
type SourceKind string

const (
	SourceInstitutional SourceKind = "institutional"
	SourceRetail        SourceKind = "retail"
)

// String returns the string representation of SourceKind.
func (s SourceKind) String() string {
	return string(s)
}

// IsValid checks if the source kind is a valid value.
func (s SourceKind) IsValid() bool {
	return s == SourceInstitutional || s == SourceRetail
}

// Focus tickers covered by the pod.
var FocusTickers = []string{"AFRM", "SQ", "PYPL", "SHOP", "TSLA"}

// Quality flags appended to evidence items by audit and dedupe passes.
// Flags are append-only metadata; they never alter an item's metric values.
const (
	FlagEmptyURL         = "EMPTY_URL"
	FlagPlaceholderURL   = "PLACEHOLDER_URL"
	FlagInvalidURL       = "INVALID_URL"
	FlagDuplicateRemoved = "DUPLICATE_REMOVED"
)

// EvidenceItem is one news article or retail post about a ticker.
// Corresponds to evidence_items table in PostgreSQL.
type EvidenceItem struct {
	ID          string     // deterministic hash, see idhash
	Ticker      string     // equity symbol
	SourceKind  SourceKind // institutional | retail
	Provider    string     // publisher or platform name
	Title       string
	URL         string   // may be empty
	Excerpt     string   // may be empty
	PublishedAt string   // ISO-8601 UTC timestamp; day-resolution significant
	RetrievedAt string   // ISO-8601 UTC timestamp of collection
	Sentiment   float64  // conventionally -1..1
	Engagement  int64    // non-negative; upvotes, shares, comments
	Hype        float64  // conventionally 0..1 (retail only)
	Shock       float64  // non-negative (news only)
	Tags        []string // lowercase topic tags
	Flags       []string // quality flags, append-only
}

// HasTag reports whether the item carries the given lowercase tag.
func (e *EvidenceItem) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasFlag reports whether the item carries the given quality flag.
func (e *EvidenceItem) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends a quality flag if not already present.
func (e *EvidenceItem) AddFlag(flag string) {
	if !e.HasFlag(flag) {
		e.Flags = append(e.Flags, flag)
	}
}

// DayKeyUTC derives the UTC calendar day ("YYYY-MM-DD") from an ISO-8601
// timestamp. Timestamps carrying a zone offset are converted to UTC first so
// items near midnight do not drift across day boundaries. Returns false for
// timestamps that carry no parseable date.
func DayKeyUTC(ts string) (string, bool) {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC().Format("2006-01-02"), true
	}
	// Day-resolution inputs ("YYYY-MM-DD" with or without a time suffix).
	if len(ts) >= 10 {
		if _, err := time.Parse("2006-01-02", ts[:10]); err == nil {
			return ts[:10], true
		}
	}
	return "", false
}
