package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/storage"
	"equity-noise-lab/internal/urlaudit"
)

// PipelineFunc recomputes downstream signals after fresh evidence lands.
type PipelineFunc func(ctx context.Context) error

// Runner orchestrates continuous ingestion from the live feed.
//
// Incoming items are buffered and flushed in batches so the dedupe and audit
// passes see whole groups, then an optional pipeline callback recomputes the
// derived series on a fixed interval. Progress (seen IDs plus a published_at
// cursor) is checkpointed so restarts never reprocess evidence.
type Runner struct {
	wsSource         *WSEvidenceSource
	evidenceStore    storage.EvidenceStore
	progressStore    storage.IngestProgressStore
	pipelineFunc     PipelineFunc
	sourceName       string        // checkpoint key in ingest_progress
	pipelineInterval time.Duration // interval for pipeline recompute
	flushInterval    time.Duration // interval for periodic buffer flush
	flushBatchSize   int           // flush early once buffer reaches this size
	logger           zerolog.Logger

	buffer []*domain.EvidenceItem
	seen   map[string]bool
	cursor string // highest published_at flushed so far
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	WSSource         *WSEvidenceSource
	EvidenceStore    storage.EvidenceStore
	ProgressStore    storage.IngestProgressStore
	PipelineFunc     PipelineFunc
	SourceName       string        // Default: "evidence_ws"
	PipelineInterval time.Duration // Default: 1h
	FlushInterval    time.Duration // Default: 5s
	FlushBatchSize   int           // Default: 200
	Logger           *zerolog.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	sourceName := opts.SourceName
	if sourceName == "" {
		sourceName = "evidence_ws"
	}

	pipelineInterval := opts.PipelineInterval
	if pipelineInterval == 0 {
		pipelineInterval = 1 * time.Hour
	}

	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	flushBatchSize := opts.FlushBatchSize
	if flushBatchSize == 0 {
		flushBatchSize = 200
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Runner{
		wsSource:         opts.WSSource,
		evidenceStore:    opts.EvidenceStore,
		progressStore:    opts.ProgressStore,
		pipelineFunc:     opts.PipelineFunc,
		sourceName:       sourceName,
		pipelineInterval: pipelineInterval,
		flushInterval:    flushInterval,
		flushBatchSize:   flushBatchSize,
		logger:           logger,
		seen:             make(map[string]bool),
	}
}

// Run starts continuous ingestion.
// It blocks until context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().Msg("starting ingestion runner")

	if err := r.restoreProgress(ctx); err != nil {
		return err
	}

	var itemsCh <-chan *domain.EvidenceItem
	if r.wsSource != nil {
		var err error
		itemsCh, err = r.wsSource.Subscribe(ctx)
		if err != nil {
			return err
		}
	}

	pipelineTicker := time.NewTicker(r.pipelineInterval)
	defer pipelineTicker.Stop()

	// Periodic flush so buffered items are written even during quiet stretches
	flushTicker := time.NewTicker(r.flushInterval)
	defer flushTicker.Stop()

	r.logger.Info().
		Str("source", r.sourceName).
		Dur("pipeline_interval", r.pipelineInterval).
		Dur("flush_interval", r.flushInterval).
		Int("flush_batch_size", r.flushBatchSize).
		Msg("runner started")

	for {
		select {
		case <-ctx.Done():
			// Flush remaining items before shutdown
			r.flush(ctx)
			r.logger.Info().Msg("runner stopping")
			return ctx.Err()

		case item, ok := <-itemsCh:
			if !ok {
				r.flush(ctx)
				r.logger.Warn().Msg("evidence channel closed")
				return errors.New("evidence channel closed")
			}
			r.bufferItem(ctx, item)

		case <-flushTicker.C:
			r.flush(ctx)

		case <-pipelineTicker.C:
			r.runPipeline(ctx)
		}
	}
}

// restoreProgress warms the seen cache and cursor from the progress store.
func (r *Runner) restoreProgress(ctx context.Context) error {
	if r.progressStore == nil {
		return nil
	}

	ids, err := r.progressStore.LoadSeenItems(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.seen[id] = true
	}

	progress, err := r.progressStore.GetLastProcessed(ctx, r.sourceName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	r.cursor = progress.Cursor

	r.logger.Info().
		Int("seen_items", len(ids)).
		Str("cursor", r.cursor).
		Msg("restored ingestion progress")
	return nil
}

// bufferItem adds an item to the flush buffer, flushing early when full.
func (r *Runner) bufferItem(ctx context.Context, item *domain.EvidenceItem) {
	r.buffer = append(r.buffer, item)
	if len(r.buffer) >= r.flushBatchSize {
		r.flush(ctx)
	}
}

// flush normalizes, audits, and stores all buffered items in deterministic
// order, then advances the checkpoint cursor.
func (r *Runner) flush(ctx context.Context) {
	if len(r.buffer) == 0 {
		return
	}

	items := r.buffer
	r.buffer = nil

	for _, item := range items {
		NormalizeEvidenceItem(item)
	}
	urlaudit.Audit(items)
	SortEvidenceItems(items)

	stored := 0
	for _, item := range items {
		if r.seen[item.ID] {
			continue
		}

		if r.evidenceStore != nil {
			if err := r.evidenceStore.Insert(ctx, item); err != nil {
				if !errors.Is(err, storage.ErrDuplicateKey) {
					r.logger.Error().Err(err).Str("evidence_id", item.ID).Msg("storing evidence item")
					continue
				}
				// Duplicate is expected, not an error
			} else {
				stored++
			}
		}

		r.seen[item.ID] = true
		if r.progressStore != nil {
			if err := r.progressStore.MarkItemSeen(ctx, item.ID); err != nil {
				r.logger.Error().Err(err).Str("evidence_id", item.ID).Msg("marking item seen")
			}
		}

		if item.PublishedAt > r.cursor {
			r.cursor = item.PublishedAt
		}
	}

	if r.progressStore != nil && r.cursor != "" {
		err := r.progressStore.SetLastProcessed(ctx, &storage.IngestProgress{
			Source: r.sourceName,
			Cursor: r.cursor,
		})
		if err != nil {
			r.logger.Error().Err(err).Msg("saving ingestion cursor")
		}
	}

	r.logger.Debug().
		Int("buffered", len(items)).
		Int("stored", stored).
		Str("cursor", r.cursor).
		Msg("flushed evidence batch")
}

// runPipeline invokes the downstream recompute callback.
func (r *Runner) runPipeline(ctx context.Context) {
	if r.pipelineFunc == nil {
		return
	}

	// Flush first so the pipeline sees everything received so far
	r.flush(ctx)

	start := time.Now()
	if err := r.pipelineFunc(ctx); err != nil {
		r.logger.Error().Err(err).Msg("pipeline recompute failed")
		return
	}
	r.logger.Info().Dur("elapsed", time.Since(start)).Msg("pipeline recompute done")
}
