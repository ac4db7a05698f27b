package pipeline

import (
	"context"
	"fmt"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
)

// Sufficiency thresholds. A series scored from thinner data is still written,
// but the report is marked so readers do not over-trust the correlations.
const (
	MinEvidenceItems   = 20
	MinCoverageDays    = 5
	MinValidationPairs = 10
	MaxFlaggedShare    = 0.5
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // data integrity errors
}

// SufficiencyChecker validates data sufficiency before reporting.
type SufficiencyChecker struct {
	evidenceStore      storage.EvidenceStore
	shortInterestStore storage.ShortInterestStore
	tickers            []string
}

// NewSufficiencyChecker creates a new sufficiency checker covering
// domain.FocusTickers.
func NewSufficiencyChecker(
	evidenceStore storage.EvidenceStore,
	shortInterestStore storage.ShortInterestStore,
) *SufficiencyChecker {
	return &SufficiencyChecker{
		evidenceStore:      evidenceStore,
		shortInterestStore: shortInterestStore,
		tickers:            domain.FocusTickers,
	}
}

// WithTickers overrides the default ticker list.
func (c *SufficiencyChecker) WithTickers(tickers []string) *SufficiencyChecker {
	c.tickers = tickers
	return c
}

// Check performs all five sufficiency checks.
func (c *SufficiencyChecker) Check(ctx context.Context) (*SufficiencyResult, error) {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 5),
		AllPass: true,
		Errors:  []string{},
	}

	var (
		totalItems    int
		retailItems   int
		newsItems     int
		flaggedItems  int
		evidenceDays  = make(map[string]struct{})
		validatePairs int
	)

	for _, ticker := range c.tickers {
		items, err := c.evidenceStore.GetByTicker(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("load evidence for %s: %w", ticker, err)
		}

		tickerDays := make(map[string]struct{})
		for _, item := range items {
			totalItems++
			switch item.SourceKind {
			case domain.SourceRetail:
				retailItems++
			default:
				newsItems++
			}
			if item.HasFlag(domain.FlagEmptyURL) ||
				item.HasFlag(domain.FlagInvalidURL) ||
				item.HasFlag(domain.FlagPlaceholderURL) {
				flaggedItems++
			}
			if day, ok := domain.DayKeyUTC(item.PublishedAt); ok {
				evidenceDays[day] = struct{}{}
				tickerDays[day] = struct{}{}
			}
		}

		rows, err := c.shortInterestStore.GetByTicker(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("load short interest for %s: %w", ticker, err)
		}
		for _, row := range rows {
			if _, ok := tickerDays[row.Day]; ok {
				validatePairs++
			}
		}
	}

	result.add(SufficiencyCheck{
		Name:      "Evidence volume",
		Threshold: fmt.Sprintf(">= %d items", MinEvidenceItems),
		Actual:    fmt.Sprintf("%d", totalItems),
		Pass:      totalItems >= MinEvidenceItems,
	})
	result.add(SufficiencyCheck{
		Name:      "Day coverage",
		Threshold: fmt.Sprintf(">= %d distinct days", MinCoverageDays),
		Actual:    fmt.Sprintf("%d days", len(evidenceDays)),
		Pass:      len(evidenceDays) >= MinCoverageDays,
	})
	result.add(SufficiencyCheck{
		Name:      "Source mix",
		Threshold: "both institutional and retail present",
		Actual:    fmt.Sprintf("%d institutional, %d retail", newsItems, retailItems),
		Pass:      newsItems > 0 && retailItems > 0,
	})
	result.add(SufficiencyCheck{
		Name:      "Validation pairs",
		Threshold: fmt.Sprintf(">= %d (ticker, day) overlaps", MinValidationPairs),
		Actual:    fmt.Sprintf("%d", validatePairs),
		Pass:      validatePairs >= MinValidationPairs,
	})

	flaggedShare := 0.0
	if totalItems > 0 {
		flaggedShare = float64(flaggedItems) / float64(totalItems)
	}
	urlCheck := SufficiencyCheck{
		Name:      "URL quality",
		Threshold: fmt.Sprintf("<= %.0f%% flagged URLs", MaxFlaggedShare*100),
		Actual:    fmt.Sprintf("%.0f%% (%d of %d)", flaggedShare*100, flaggedItems, totalItems),
		Pass:      flaggedShare <= MaxFlaggedShare,
	}
	result.add(urlCheck)
	if !urlCheck.Pass {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%d of %d evidence items carry URL quality flags", flaggedItems, totalItems))
	}

	return result, nil
}

func (r *SufficiencyResult) add(check SufficiencyCheck) {
	r.Checks = append(r.Checks, check)
	if !check.Pass {
		r.AllPass = false
	}
}
