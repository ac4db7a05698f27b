// Package similarity provides token-level text similarity and URL
// normalization used by the evidence deduplicator.
package similarity

import "strings"

// Jaccard computes word-token Jaccard similarity between two strings:
// |intersection| / |union| over lower-cased whitespace tokens.
// Returns 0.0 if either input is empty; never divides by zero.
func Jaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	sa := tokenSet(a)
	sb := tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}

	inter := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// NormalizeURL strips the query string and one trailing slash for URL
// deduplication. Returns "" for empty input.
func NormalizeURL(url string) string {
	if url == "" {
		return ""
	}
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	return strings.TrimSuffix(url, "/")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}
