// Package hype provides the rule-based hype and sentiment classifiers used to
// backfill metrics on evidence items that arrive without them. These are
// deliberately naive word-set heuristics, not NLP: sentiment and hype are
// treated as supplied inputs by the analytical core, and these classifiers
// only stand in for collectors that did not score their items.
package hype

import (
	"math"
	"strings"
)

var bullWords = map[string]struct{}{
	"moon": {}, "squeeze": {}, "yolo": {}, "rocket": {}, "ape": {},
	"diamond": {}, "hold": {}, "rip": {}, "breakout": {}, "buy": {},
	"calls": {}, "bullish": {}, "long": {}, "up": {},
}

var bearWords = map[string]struct{}{
	"puts": {}, "short": {}, "crash": {}, "dump": {}, "paper": {},
	"sell": {}, "bearish": {}, "down": {},
}

var posNewsWords = []string{"surge", "rally", "beat", "record", "up", "gain", "bullish"}
var negNewsWords = []string{"drop", "crash", "miss", "down", "loss", "bearish", "fail"}

// Score rates retail text 0..1 by bull-word share: bull/(bull+bear), rounded
// to 4 decimals, 0.5 when no loaded words appear.
func Score(title, excerpt string) float64 {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title + " " + excerpt)) {
		words[w] = struct{}{}
	}

	bull, bear := 0, 0
	for w := range words {
		if _, ok := bullWords[w]; ok {
			bull++
		}
		if _, ok := bearWords[w]; ok {
			bear++
		}
	}

	total := bull + bear
	if total == 0 {
		return 0.5
	}
	return round4(float64(bull) / float64(total))
}

// NewsSentiment rates news text -1..1 as (pos-neg)/(pos+neg) over substring
// hits, rounded to 4 decimals, 0 when no loaded words appear.
func NewsSentiment(title, excerpt string) float64 {
	text := strings.ToLower(title + " " + excerpt)

	pos, neg := 0, 0
	for _, w := range posNewsWords {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range negNewsWords {
		if strings.Contains(text, w) {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0.0
	}
	return round4(float64(pos-neg) / float64(total))
}

// Shock estimates a news item's shock magnitude from sentiment strength and
// headline length: |sentiment| * min(len(title)/20, 5), rounded to 2 decimals.
func Shock(sentiment float64, title string) float64 {
	scale := float64(len(title)) / 20
	if scale > 5 {
		scale = 5
	}
	return math.Round(math.Abs(sentiment)*scale*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
