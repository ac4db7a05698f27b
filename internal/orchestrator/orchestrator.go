// Package orchestrator provides end-to-end pipeline orchestration.
// It coordinates: dedupe → daily aggregation → Noise Index → validation.
package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"equity-noise-lab/internal/aggregate"
	"equity-noise-lab/internal/dedup"
	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/noiseindex"
	"equity-noise-lab/internal/storage"
	"equity-noise-lab/internal/validation"
)

// Orchestrator coordinates the per-ticker pipeline execution.
// Flow: load evidence → dedupe → daily buckets → Noise Index series → validate.
type Orchestrator struct {
	// Stores
	evidenceStore      storage.EvidenceStore
	shortInterestStore storage.ShortInterestStore
	dailyBucketStore   storage.DailyBucketStore
	noiseSeriesStore   storage.NoiseSeriesStore

	// Configs
	tickers  []string
	swanTags map[string]struct{}

	// Options
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	EvidenceStore      storage.EvidenceStore
	ShortInterestStore storage.ShortInterestStore
	DailyBucketStore   storage.DailyBucketStore
	NoiseSeriesStore   storage.NoiseSeriesStore

	// Tickers to process. Defaults to domain.FocusTickers.
	Tickers []string

	// Tags that mark structural-event days. Defaults to aggregate.DefaultSwanTags.
	SwanTags map[string]struct{}

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	tickers := opts.Tickers
	if len(tickers) == 0 {
		tickers = domain.FocusTickers
	}
	swanTags := opts.SwanTags
	if swanTags == nil {
		swanTags = aggregate.DefaultSwanTags()
	}
	return &Orchestrator{
		evidenceStore:      opts.EvidenceStore,
		shortInterestStore: opts.ShortInterestStore,
		dailyBucketStore:   opts.DailyBucketStore,
		noiseSeriesStore:   opts.NoiseSeriesStore,
		tickers:            tickers,
		swanTags:           swanTags,
		verbose:            opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	TickersProcessed  int
	EvidenceLoaded    int
	DuplicatesDropped int
	ItemsSkipped      int
	BucketsStored     int
	PointsStored      int
	SwanDays          int
	Reports           []*validation.Report
	Errors            []string
}

// Run executes the full pipeline for every configured ticker.
// Phases per ticker:
//  1. Load stored evidence
//  2. Dedupe (URL, then title, then excerpt)
//  3. Aggregate into daily buckets
//  4. Score the full Noise Index series
//  5. Store buckets and series (a rerun supersedes prior rows)
//  6. Validate against short-interest reference data
//
// Per-ticker failures are recorded in Errors and do not abort the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	for _, ticker := range o.tickers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := o.runTicker(ctx, ticker, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ticker %s: %v", ticker, err))
			continue
		}
		result.TickersProcessed++
	}

	o.log("pipeline completed: %d tickers, %d evidence, %d dropped, %d points (%d errors)",
		result.TickersProcessed, result.EvidenceLoaded, result.DuplicatesDropped,
		result.PointsStored, len(result.Errors))

	return result, nil
}

func (o *Orchestrator) runTicker(ctx context.Context, ticker string, result *RunResult) error {
	// Phase 1: Load evidence
	items, err := o.evidenceStore.GetByTicker(ctx, ticker)
	if err != nil {
		return fmt.Errorf("load evidence: %w", err)
	}
	result.EvidenceLoaded += len(items)
	o.log("%s: loaded %d evidence items", ticker, len(items))
	if len(items) == 0 {
		return nil
	}

	// Phase 2: Dedupe
	dd := dedup.Dedupe(items)
	result.DuplicatesDropped += dd.DroppedCount
	o.log("%s: kept %d items, dropped %d duplicates", ticker, len(dd.Kept), dd.DroppedCount)

	// Phase 3: Daily aggregation
	buckets, skipped := aggregate.Aggregate(dd.Kept, o.swanTags)
	result.ItemsSkipped += skipped

	// Phase 4: Noise Index over the whole series
	series := noiseindex.BuildSeries(ticker, buckets)

	// Phase 5: Store (rerun replaces existing rows for the same days)
	if err := o.dailyBucketStore.InsertBulk(ctx, sortedBuckets(buckets)); err != nil {
		return fmt.Errorf("store buckets: %w", err)
	}
	result.BucketsStored += len(buckets)

	if err := o.noiseSeriesStore.InsertBulk(ctx, series); err != nil {
		return fmt.Errorf("store series: %w", err)
	}
	result.PointsStored += len(series)
	for _, p := range series {
		if p.IsSwan {
			result.SwanDays++
		}
	}

	// Phase 6: Validation against short-interest reference
	rows, err := o.shortInterestStore.GetByTicker(ctx, ticker)
	if err != nil {
		return fmt.Errorf("load short interest: %w", err)
	}
	report := validation.Validate(ticker, series, rows)
	result.Reports = append(result.Reports, report)
	o.log("%s: %d points, %d usable validation pairs", ticker, len(series), report.UsablePairs)

	return nil
}

// sortedBuckets flattens the day-keyed map into a day-ascending slice.
func sortedBuckets(buckets map[string]*domain.DailySignalBucket) []*domain.DailySignalBucket {
	out := make([]*domain.DailySignalBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Info().Msgf("[orchestrator] "+format, args...)
	}
}
