// Package main provides the unified service that runs all components together:
// - Ingestion (continuous): live evidence feed into the stores
// - Pipeline (scheduled): dedupe → aggregate → score → validate
// - Reporting (scheduled): REPORT.md, CSVs, sufficiency check
// - HTTP API: read access to evidence, buckets, series, and flag rendering
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"equity-noise-lab/internal/config"
	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/feed"
	"equity-noise-lab/internal/ingestion"
	"equity-noise-lab/internal/observability"
	"equity-noise-lab/internal/orchestrator"
	"equity-noise-lab/internal/pipeline"
	"equity-noise-lab/internal/render"
	"equity-noise-lab/internal/snapshot"
	"equity-noise-lab/internal/storage"
	chstore "equity-noise-lab/internal/storage/clickhouse"
	"equity-noise-lab/internal/storage/memory"
	pgstore "equity-noise-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	cfg       *config.Config
	outputDir string
	useMemory bool

	stores *allStores
	logger zerolog.Logger

	mu               sync.Mutex
	ingestionStarted time.Time
	lastPipelineRun  time.Time
	lastReportRun    time.Time
	pipelineRunning  bool
	reportRunning    bool
	pipelineRuns     int
	reportRuns       int
}

// allStores holds all storage implementations.
type allStores struct {
	evidenceStore      storage.EvidenceStore
	shortInterestStore storage.ShortInterestStore
	dailyBucketStore   storage.DailyBucketStore
	noiseSeriesStore   storage.NoiseSeriesStore
	progressStore      storage.IngestProgressStore
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	outputDir := flag.String("output-dir", "out", "Output directory for reports")
	reportInterval := flag.Duration("report-interval", 6*time.Hour, "Report generation interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Logging)
	logger := log.With().Str("component", "server").Logger()

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create stores")
	}
	defer cleanup()

	server := &Server{
		cfg:       cfg,
		outputDir: *outputDir,
		useMemory: *useMemory,
		stores:    stores,
		logger:    logger,
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Msgf("received signal %v, initiating graceful shutdown", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warn().Msgf("received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	go server.startAPIServer(cfg.Server.Addr)
	if cfg.Server.MetricsAddr != "" {
		go server.startMetricsServer(cfg.Server.MetricsAddr)
	}

	err = server.Run(ctx, *reportInterval)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("server error")
	}

	logger.Info().Msg("shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			evidenceStore:      memory.NewEvidenceStore(),
			shortInterestStore: memory.NewShortInterestStore(),
			dailyBucketStore:   memory.NewDailyBucketStore(),
			noiseSeriesStore:   memory.NewNoiseSeriesStore(),
			progressStore:      memory.NewIngestProgressStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, cfg.ClickHouse.DSN())
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (raw evidence, reference data, checkpoints)
		evidenceStore:      pgstore.NewEvidenceStore(pool),
		shortInterestStore: pgstore.NewShortInterestStore(pool),
		progressStore:      pgstore.NewIngestProgressStore(pool),

		// ClickHouse stores (derived analytics)
		dailyBucketStore: chstore.NewDailyBucketStore(chConn),
		noiseSeriesStore: chstore.NewNoiseSeriesStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context, reportInterval time.Duration) error {
	s.logger.Info().Msg("starting unified server")

	errCh := make(chan error, 3)

	go func() {
		err := s.runIngestion(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go func() {
		err := s.runPipelineScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("pipeline scheduler: %w", err)
		}
	}()

	go func() {
		err := s.runReportScheduler(ctx, reportInterval)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("report scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIngestion runs continuous evidence ingestion from the live feed.
func (s *Server) runIngestion(ctx context.Context) error {
	s.logger.Info().Str("endpoint", s.cfg.Feed.Endpoint).Msg("starting ingestion")

	client, err := feed.NewClient(ctx, s.cfg.Feed.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("connect to evidence feed: %w", err)
	}
	defer client.Close()

	ingestLogger := log.With().Str("component", "ingestion").Logger()
	wsSource := ingestion.NewWSEvidenceSource(client, s.cfg.Feed.Tickers, ingestLogger)

	// Pipeline rescoring is owned by the scheduler, not the runner.
	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		WSSource:       wsSource,
		EvidenceStore:  s.stores.evidenceStore,
		ProgressStore:  s.stores.progressStore,
		FlushInterval:  s.cfg.Ingest.FlushInterval.Std(),
		FlushBatchSize: s.cfg.Ingest.FlushBatchSize,
		Logger:         &ingestLogger,
	})

	s.mu.Lock()
	s.ingestionStarted = time.Now()
	s.mu.Unlock()

	s.logger.Info().Msg("ingestion started")
	return runner.Run(ctx)
}

// runPipelineScheduler runs the scoring pipeline on schedule.
func (s *Server) runPipelineScheduler(ctx context.Context) error {
	interval := s.cfg.Ingest.PipelineInterval.Std()
	s.logger.Info().Dur("interval", interval).Msg("starting pipeline scheduler")

	// Run immediately on start
	s.runPipeline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

// runPipeline executes the scoring pipeline.
func (s *Server) runPipeline(ctx context.Context) {
	s.mu.Lock()
	if s.pipelineRunning {
		s.mu.Unlock()
		s.logger.Info().Msg("pipeline already running, skipping")
		return
	}
	s.pipelineRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pipelineRunning = false
		s.lastPipelineRun = time.Now()
		s.pipelineRuns++
		s.mu.Unlock()
	}()

	s.logger.Info().Msg("running pipeline")
	start := time.Now()

	orch := orchestrator.New(orchestrator.Options{
		EvidenceStore:      s.stores.evidenceStore,
		ShortInterestStore: s.stores.shortInterestStore,
		DailyBucketStore:   s.stores.dailyBucketStore,
		NoiseSeriesStore:   s.stores.noiseSeriesStore,
		Tickers:            s.cfg.Feed.Tickers,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("pipeline error")
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return
	}

	s.logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("tickers", result.TickersProcessed).
		Int("evidence", result.EvidenceLoaded).
		Int("duplicates_dropped", result.DuplicatesDropped).
		Int("points", result.PointsStored).
		Int("swan_days", result.SwanDays).
		Msg("pipeline completed")

	observability.RecordPipelineRun("success", time.Since(start).Seconds())
}

// runReportScheduler runs report generation on schedule.
func (s *Server) runReportScheduler(ctx context.Context, interval time.Duration) error {
	s.logger.Info().Dur("interval", interval).Msg("starting report scheduler")

	// Wait for first pipeline run before generating reports
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Minute):
	}

	s.runReport(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runReport(ctx)
		}
	}
}

// runReport generates report artifacts.
func (s *Server) runReport(ctx context.Context) {
	s.mu.Lock()
	if s.reportRunning {
		s.mu.Unlock()
		s.logger.Info().Msg("report generation already running, skipping")
		return
	}
	s.reportRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reportRunning = false
		s.lastReportRun = time.Now()
		s.reportRuns++
		s.mu.Unlock()
	}()

	s.logger.Info().Msg("generating reports")
	start := time.Now()

	p := pipeline.NewReportPipeline(
		s.stores.evidenceStore,
		s.stores.shortInterestStore,
		s.stores.noiseSeriesStore,
		s.outputDir,
	).WithSufficiencyChecker(
		pipeline.NewSufficiencyChecker(s.stores.evidenceStore, s.stores.shortInterestStore),
	).WithTickers(s.cfg.Feed.Tickers)

	if err := p.Run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("report generation error")
		return
	}

	observability.DefaultMetrics.ReportsGenerated.Inc()
	s.logger.Info().Dur("elapsed", time.Since(start)).Str("dir", s.outputDir).Msg("reports generated")
}

// startAPIServer starts the HTTP server for the read API and status.
func (s *Server) startAPIServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/api/evidence", s.handleEvidence)
	mux.HandleFunc("/api/short-interest", s.handleShortInterest)
	mux.HandleFunc("/api/buckets", s.handleBuckets)
	mux.HandleFunc("/api/series", s.handleSeries)
	mux.HandleFunc("/api/flags", s.handleFlags)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)

	s.logger.Info().Str("addr", addr).Msg("starting API server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Msg("API server error")
	}
}

// startMetricsServer starts the Prometheus metrics listener.
func (s *Server) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	s.logger.Info().Str("addr", addr).Msg("starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Msg("metrics server error")
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	IngestionStarted time.Time `json:"ingestion_started"`
	LastPipelineRun  time.Time `json:"last_pipeline_run,omitempty"`
	LastReportRun    time.Time `json:"last_report_run,omitempty"`
	PipelineRuns     int       `json:"pipeline_runs"`
	ReportRuns       int       `json:"report_runs"`
	PipelineRunning  bool      `json:"pipeline_running"`
	ReportRunning    bool      `json:"report_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.ingestionStarted).String(),
		IngestionStarted: s.ingestionStarted,
		LastPipelineRun:  s.lastPipelineRun,
		LastReportRun:    s.lastReportRun,
		PipelineRuns:     s.pipelineRuns,
		ReportRuns:       s.reportRuns,
		PipelineRunning:  s.pipelineRunning,
		ReportRunning:    s.reportRunning,
	}

	writeJSON(w, resp)
}

// tickerParams extracts the common ticker/from/to query parameters.
// A missing ticker writes a 400 and returns ok=false.
func tickerParams(w http.ResponseWriter, r *http.Request) (ticker, from, to string, ok bool) {
	q := r.URL.Query()
	ticker = q.Get("ticker")
	if ticker == "" {
		http.Error(w, `{"error":"ticker parameter is required"}`, http.StatusBadRequest)
		return "", "", "", false
	}
	return ticker, q.Get("from"), q.Get("to"), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
}

// EvidenceItemJSON is the API shape of one evidence item.
type EvidenceItemJSON struct {
	ID          string   `json:"id"`
	Ticker      string   `json:"ticker"`
	SourceKind  string   `json:"source_kind"`
	Provider    string   `json:"provider"`
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	PublishedAt string   `json:"published_at"`
	Sentiment   float64  `json:"sentiment"`
	Engagement  int64    `json:"engagement"`
	Hype        float64  `json:"hype"`
	Shock       float64  `json:"shock"`
	Tags        []string `json:"tags,omitempty"`
	Flags       []string `json:"flags,omitempty"`
}

// handleEvidence returns a ticker's evidence items, optionally day-bounded.
func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	ticker, from, to, ok := tickerParams(w, r)
	if !ok {
		return
	}

	items, err := getRanged(r.Context(), ticker, from, to,
		s.stores.evidenceStore.GetByTicker, s.stores.evidenceStore.GetByTickerAndDayRange)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]EvidenceItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, EvidenceItemJSON{
			ID:          item.ID,
			Ticker:      item.Ticker,
			SourceKind:  string(item.SourceKind),
			Provider:    item.Provider,
			Title:       item.Title,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			Sentiment:   item.Sentiment,
			Engagement:  item.Engagement,
			Hype:        item.Hype,
			Shock:       item.Shock,
			Tags:        item.Tags,
			Flags:       item.Flags,
		})
	}
	writeJSON(w, out)
}

// ShortInterestJSON is the API shape of one short-interest day.
type ShortInterestJSON struct {
	Ticker           string  `json:"ticker"`
	Day              string  `json:"day"`
	ShortInterestPct float64 `json:"short_interest_pct"`
	CrowdedScore     float64 `json:"crowded_score"`
	SqueezeScore     float64 `json:"squeeze_score"`
	Utilization      float64 `json:"utilization"`
	BorrowCost       float64 `json:"borrow_cost"`
}

func (s *Server) handleShortInterest(w http.ResponseWriter, r *http.Request) {
	ticker, from, to, ok := tickerParams(w, r)
	if !ok {
		return
	}

	rows, err := getRanged(r.Context(), ticker, from, to,
		s.stores.shortInterestStore.GetByTicker, s.stores.shortInterestStore.GetByTickerAndDayRange)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]ShortInterestJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, ShortInterestJSON{
			Ticker:           row.Ticker,
			Day:              row.Day,
			ShortInterestPct: row.ShortInterestPct,
			CrowdedScore:     row.CrowdedScore,
			SqueezeScore:     row.SqueezeScore,
			Utilization:      row.Utilization,
			BorrowCost:       row.BorrowCost,
		})
	}
	writeJSON(w, out)
}

// DailyBucketJSON is the API shape of one aggregated day.
type DailyBucketJSON struct {
	Ticker           string  `json:"ticker"`
	Day              string  `json:"day"`
	NewsCount        int     `json:"news_count"`
	RetailCount      int     `json:"retail_count"`
	AvgNewsSentiment float64 `json:"avg_news_sentiment"`
	AvgRetailHype    float64 `json:"avg_retail_hype"`
	IsSwanDay        bool    `json:"is_swan_day"`
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	ticker, from, to, ok := tickerParams(w, r)
	if !ok {
		return
	}

	buckets, err := getRanged(r.Context(), ticker, from, to,
		s.stores.dailyBucketStore.GetByTicker, s.stores.dailyBucketStore.GetByTickerAndDayRange)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]DailyBucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, DailyBucketJSON{
			Ticker:           b.Ticker,
			Day:              b.Day,
			NewsCount:        b.NewsCount,
			RetailCount:      b.RetailCount,
			AvgNewsSentiment: b.AvgNewsSentiment(),
			AvgRetailHype:    b.AvgRetailHype(),
			IsSwanDay:        b.IsSwanDay,
		})
	}
	writeJSON(w, out)
}

// SeriesPointJSON is the API shape of one scored day.
type SeriesPointJSON struct {
	Ticker           string  `json:"ticker"`
	Day              string  `json:"day"`
	NewsVolumeNorm   float64 `json:"news_volume_norm"`
	RetailVolumeNorm float64 `json:"retail_volume_norm"`
	AvgNewsSentiment float64 `json:"avg_news_sentiment"`
	AvgRetailHype    float64 `json:"avg_retail_hype"`
	ZScore           float64 `json:"z_score"`
	NoiseIndex       float64 `json:"noise_index"`
	IsSwan           bool    `json:"is_swan"`
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	ticker, from, to, ok := tickerParams(w, r)
	if !ok {
		return
	}

	points, err := getRanged(r.Context(), ticker, from, to,
		s.stores.noiseSeriesStore.GetByTicker, s.stores.noiseSeriesStore.GetByTickerAndDayRange)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]SeriesPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, SeriesPointJSON{
			Ticker:           p.Ticker,
			Day:              p.Day,
			NewsVolumeNorm:   p.NewsVolumeNorm,
			RetailVolumeNorm: p.RetailVolumeNorm,
			AvgNewsSentiment: p.AvgNewsSentiment,
			AvgRetailHype:    p.AvgRetailHype,
			ZScore:           p.ZScore,
			NoiseIndex:       p.NoiseIndex,
			IsSwan:           p.IsSwan,
		})
	}
	writeJSON(w, out)
}

// FlagViewJSON is the API shape of a rendered flag view.
type FlagViewJSON struct {
	Mode   string             `json:"mode"`
	Groups []ClusterGroupJSON `json:"groups,omitempty"`
	Band   []BandCellJSON     `json:"band,omitempty"`
}

type ClusterGroupJSON struct {
	AnchorDay  string   `json:"anchor_day"`
	MemberDays []string `json:"member_days"`
	Count      int      `json:"count"`
	StableKey  string   `json:"stable_key"`
}

type BandCellJSON struct {
	Day       string  `json:"day"`
	Intensity float64 `json:"intensity"`
	HasEvent  bool    `json:"has_event"`
	Reason    string  `json:"reason,omitempty"`
}

// handleFlags renders the flag view for a window at a given width.
// Query: ticker, from, to (inclusive days), width (pixels).
func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	ticker, from, to, ok := tickerParams(w, r)
	if !ok {
		return
	}
	if from == "" || to == "" {
		http.Error(w, `{"error":"from and to parameters are required"}`, http.StatusBadRequest)
		return
	}

	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil || width <= 0 {
		http.Error(w, `{"error":"width must be a positive number"}`, http.StatusBadRequest)
		return
	}

	points, err := s.stores.noiseSeriesStore.GetByTickerAndDayRange(r.Context(), ticker, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	events := render.BuildFlagEvents(points, from, to)
	view := render.Render(events, render.Viewport{
		Ticker:      ticker,
		WidthPx:     width,
		WindowStart: from,
		WindowEnd:   to,
	})

	out := FlagViewJSON{Mode: view.Mode.String()}
	for _, g := range view.Groups {
		out.Groups = append(out.Groups, ClusterGroupJSON{
			AnchorDay:  g.AnchorDay,
			MemberDays: g.MemberDays,
			Count:      g.Count,
			StableKey:  g.StableKey,
		})
	}
	for _, c := range view.Band {
		out.Band = append(out.Band, BandCellJSON{
			Day:       c.Day,
			Intensity: c.Intensity,
			HasEvent:  c.HasEvent,
			Reason:    c.Reason,
		})
	}
	writeJSON(w, out)
}

// handleSnapshot builds the daily market snapshot for the configured tickers.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rows []*domain.ShortInterestRow
	var items []*domain.EvidenceItem
	for _, ticker := range s.cfg.Feed.Tickers {
		tickerRows, err := s.stores.shortInterestStore.GetByTicker(ctx, ticker)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		rows = append(rows, tickerRows...)

		tickerItems, err := s.stores.evidenceStore.GetByTicker(ctx, ticker)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		items = append(items, tickerItems...)
	}

	writeJSON(w, snapshot.NewBuilder().Build(rows, items))
}

// getRanged picks the full or day-bounded store query depending on whether a
// range was supplied. An open end defaults to today, an open start to the
// epoch of the day format.
func getRanged[T any](
	ctx context.Context,
	ticker, from, to string,
	all func(context.Context, string) ([]T, error),
	ranged func(context.Context, string, string, string) ([]T, error),
) ([]T, error) {
	if from == "" && to == "" {
		return all(ctx, ticker)
	}
	if from == "" {
		from = "1970-01-01"
	}
	if to == "" {
		to = time.Now().UTC().Format("2006-01-02")
	}
	return ranged(ctx, ticker, from, to)
}
