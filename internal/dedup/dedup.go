// Package dedup removes near-duplicate evidence items before daily
// aggregation. Detection is greedy and order-sensitive: the first occurrence
// of a duplicate cluster is always the canonical survivor.
package dedup

import (
	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/similarity"
)

// Similarity thresholds. Fixed constants, not configuration: downstream golden
// comparisons depend on them exactly.
const (
	TitleThreshold   = 0.92
	ExcerptThreshold = 0.85
)

// Reason classifies why a candidate was dropped (or kept).
type Reason string

const (
	ReasonNone              Reason = "none"
	ReasonURLMatch          Reason = "url_match"
	ReasonTitleSimilarity   Reason = "title_similarity"
	ReasonExcerptSimilarity Reason = "excerpt_similarity"
)

// Decision records the outcome of comparing one candidate against the
// already-kept set.
type Decision struct {
	ItemID string
	Kept   bool
	Reason Reason
}

// Result is the output of one dedupe pass.
type Result struct {
	Kept         []*domain.EvidenceItem
	DroppedCount int
	Decisions    []Decision
}

// Dedupe performs a single forward pass over items in input order. For each
// candidate: drop on exact normalized-URL match against any kept item, else on
// title Jaccard >= TitleThreshold, else on non-empty excerpt Jaccard >=
// ExcerptThreshold; otherwise keep. Once kept, an item is never retracted by a
// later comparison. Complexity is O(n*k) with k the kept-set size, acceptable
// at realistic daily volumes.
//
// Input items are not mutated in meaning: survivors that absorbed at least one
// duplicate get a cosmetic DUPLICATE_REMOVED quality flag appended.
// The seen-URL accumulator is local to the call, so concurrent per-ticker
// passes cannot interfere.
func Dedupe(items []*domain.EvidenceItem) *Result {
	res := &Result{
		Kept:      make([]*domain.EvidenceItem, 0, len(items)),
		Decisions: make([]Decision, 0, len(items)),
	}

	seenURLs := make(map[string]int) // normalized URL -> index in Kept

	for _, item := range items {
		normURL := similarity.NormalizeURL(item.URL)

		if normURL != "" {
			if ki, ok := seenURLs[normURL]; ok {
				res.drop(item, ReasonURLMatch)
				res.Kept[ki].AddFlag(domain.FlagDuplicateRemoved)
				continue
			}
		}

		if ki := matchTitle(res.Kept, item.Title); ki >= 0 {
			res.drop(item, ReasonTitleSimilarity)
			res.Kept[ki].AddFlag(domain.FlagDuplicateRemoved)
			continue
		}

		if item.Excerpt != "" {
			if ki := matchExcerpt(res.Kept, item.Excerpt); ki >= 0 {
				res.drop(item, ReasonExcerptSimilarity)
				res.Kept[ki].AddFlag(domain.FlagDuplicateRemoved)
				continue
			}
		}

		if normURL != "" {
			seenURLs[normURL] = len(res.Kept)
		}
		res.Kept = append(res.Kept, item)
		res.Decisions = append(res.Decisions, Decision{ItemID: item.ID, Kept: true, Reason: ReasonNone})
	}

	return res
}

func (r *Result) drop(item *domain.EvidenceItem, reason Reason) {
	r.DroppedCount++
	r.Decisions = append(r.Decisions, Decision{ItemID: item.ID, Kept: false, Reason: reason})
}

func matchTitle(kept []*domain.EvidenceItem, title string) int {
	for i, k := range kept {
		if similarity.Jaccard(title, k.Title) >= TitleThreshold {
			return i
		}
	}
	return -1
}

func matchExcerpt(kept []*domain.EvidenceItem, excerpt string) int {
	for i, k := range kept {
		if similarity.Jaccard(excerpt, k.Excerpt) >= ExcerptThreshold {
			return i
		}
	}
	return -1
}
