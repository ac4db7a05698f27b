// Package urlaudit classifies evidence source URLs and records quality flags
// on the items. Classification is syntactic only: nothing is fetched.
package urlaudit

import (
	"net/url"
	"strings"

	"equity-noise-lab/internal/domain"
)

// Classification of a single URL.
type Classification string

const (
	ClassEmpty         Classification = "EMPTY"
	ClassInvalidSyntax Classification = "INVALID_SYNTAX"
	ClassPlaceholder   Classification = "PLACEHOLDER"
	ClassOK            Classification = "OK"
)

var placeholderDomains = map[string]struct{}{
	"placeholder.com":        {},
	"placeholder-social.com": {},
	"example.com":            {},
}

// Classify inspects a URL and returns its classification plus any quality
// flag to attach. A URL must be https, parseable, and carry a domain that is
// not a known placeholder to pass.
func Classify(rawURL string) (Classification, string) {
	if strings.TrimSpace(rawURL) == "" {
		return ClassEmpty, domain.FlagEmptyURL
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return ClassInvalidSyntax, domain.FlagInvalidURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ClassInvalidSyntax, domain.FlagInvalidURL
	}
	host := strings.ToLower(parsed.Host)
	if strings.Contains(host, "'") {
		return ClassInvalidSyntax, domain.FlagInvalidURL
	}

	if _, ok := placeholderDomains[host]; ok {
		return ClassPlaceholder, domain.FlagPlaceholderURL
	}
	return ClassOK, ""
}

// Result summarizes an audit pass over a batch of evidence items.
type Result struct {
	Total  int                    `json:"total"`
	Counts map[Classification]int `json:"counts"`
}

// Audit classifies every item's URL, attaches the corresponding quality flag
// in place, and returns per-classification counts.
func Audit(items []*domain.EvidenceItem) *Result {
	res := &Result{
		Total:  len(items),
		Counts: make(map[Classification]int),
	}
	for _, it := range items {
		cls, flag := Classify(it.URL)
		res.Counts[cls]++
		if flag != "" {
			it.AddFlag(flag)
		}
	}
	return res
}
