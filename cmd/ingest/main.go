package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"equity-noise-lab/internal/config"
	"equity-noise-lab/internal/feed"
	"equity-noise-lab/internal/ingestion"
	"equity-noise-lab/internal/observability"
	"equity-noise-lab/internal/orchestrator"
	"equity-noise-lab/internal/storage"
	chstore "equity-noise-lab/internal/storage/clickhouse"
	"equity-noise-lab/internal/storage/memory"
	pgstore "equity-noise-lab/internal/storage/postgres"
)

func main() {
	mode := flag.String("mode", "live", "Ingestion mode: live or backfill")
	configPath := flag.String("config", "", "Path to YAML config file")
	cachePaths := flag.String("cache", "", "Comma-separated evidence cache files (backfill mode)")
	shortCSV := flag.String("short-csv", "", "Short interest CSV file (backfill mode)")
	fromDay := flag.String("from-day", "", "Start day for backfill (YYYY-MM-DD, inclusive)")
	toDay := flag.String("to-day", "", "End day for backfill (YYYY-MM-DD, inclusive)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Logging)
	logger := log.With().Str("component", "ingest").Logger()

	if *cachePaths != "" {
		cfg.Ingest.CachePaths = splitList(*cachePaths)
	}
	if *shortCSV != "" {
		cfg.Ingest.ShortInterestCSV = *shortCSV
	}

	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

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

	switch *mode {
	case "live":
		err = runLive(ctx, logger, cfg, *useMemory)
	case "backfill":
		err = runBackfill(ctx, logger, cfg, *fromDay, *toDay, *useMemory)
	default:
		logger.Fatal().Msgf("unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("ingestion failed")
	}

	logger.Info().Msg("shutdown complete")
}

func serveMetrics(logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Info().Msgf("starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// runLive subscribes to the evidence feed and ingests continuously, rescoring
// the series on the configured pipeline interval.
func runLive(ctx context.Context, logger zerolog.Logger, cfg *config.Config, useMemory bool) error {
	client, err := feed.NewClient(ctx, cfg.Feed.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("connect to evidence feed: %w", err)
	}
	defer client.Close()

	var (
		evidenceStore      storage.EvidenceStore       = memory.NewEvidenceStore()
		shortInterestStore storage.ShortInterestStore  = memory.NewShortInterestStore()
		dailyBucketStore   storage.DailyBucketStore    = memory.NewDailyBucketStore()
		noiseSeriesStore   storage.NoiseSeriesStore    = memory.NewNoiseSeriesStore()
		progressStore      storage.IngestProgressStore = memory.NewIngestProgressStore()
	)

	if !useMemory {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		conn, err := chstore.NewConn(ctx, cfg.ClickHouse.DSN())
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()

		evidenceStore = pgstore.NewEvidenceStore(pool)
		shortInterestStore = pgstore.NewShortInterestStore(pool)
		progressStore = pgstore.NewIngestProgressStore(pool)
		dailyBucketStore = chstore.NewDailyBucketStore(conn)
		noiseSeriesStore = chstore.NewNoiseSeriesStore(conn)
	}

	wsSource := ingestion.NewWSEvidenceSource(client, cfg.Feed.Tickers, logger)

	orch := orchestrator.New(orchestrator.Options{
		EvidenceStore:      evidenceStore,
		ShortInterestStore: shortInterestStore,
		DailyBucketStore:   dailyBucketStore,
		NoiseSeriesStore:   noiseSeriesStore,
		Tickers:            cfg.Feed.Tickers,
	})
	pipelineFunc := func(ctx context.Context) error {
		_, err := orch.Run(ctx)
		return err
	}

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		WSSource:         wsSource,
		EvidenceStore:    evidenceStore,
		ProgressStore:    progressStore,
		PipelineFunc:     pipelineFunc,
		PipelineInterval: cfg.Ingest.PipelineInterval.Std(),
		FlushInterval:    cfg.Ingest.FlushInterval.Std(),
		FlushBatchSize:   cfg.Ingest.FlushBatchSize,
		Logger:           &logger,
	})

	logger.Info().Strs("tickers", cfg.Feed.Tickers).Msg("starting live ingestion")
	return runner.Run(ctx)
}

// runBackfill loads cached evidence payloads and the short interest CSV.
func runBackfill(ctx context.Context, logger zerolog.Logger, cfg *config.Config, fromDay, toDay string, useMemory bool) error {
	if len(cfg.Ingest.CachePaths) == 0 && cfg.Ingest.ShortInterestCSV == "" {
		return fmt.Errorf("backfill mode needs --cache or --short-csv (or the equivalent config keys)")
	}

	var (
		evidenceStore      storage.EvidenceStore       = memory.NewEvidenceStore()
		shortInterestStore storage.ShortInterestStore  = memory.NewShortInterestStore()
		progressStore      storage.IngestProgressStore = memory.NewIngestProgressStore()
	)

	if !useMemory {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		evidenceStore = pgstore.NewEvidenceStore(pool)
		shortInterestStore = pgstore.NewShortInterestStore(pool)
		progressStore = pgstore.NewIngestProgressStore(pool)
	}

	opts := ingestion.ManagerOptions{
		EvidenceStore:      evidenceStore,
		ShortInterestStore: shortInterestStore,
		ProgressStore:      progressStore,
	}
	if len(cfg.Ingest.CachePaths) > 0 {
		opts.EvidenceSource = ingestion.NewCacheEvidenceSource(cfg.Ingest.CachePaths...)
	}
	if cfg.Ingest.ShortInterestCSV != "" {
		opts.ShortInterestSource = ingestion.NewCSVShortInterestSource(cfg.Ingest.ShortInterestCSV)
	}
	mgr := ingestion.NewManager(opts)

	for _, ticker := range cfg.Feed.Tickers {
		if opts.EvidenceSource != nil {
			n, err := mgr.IngestEvidence(ctx, ticker, fromDay, toDay)
			if err != nil {
				return fmt.Errorf("ingest evidence for %s: %w", ticker, err)
			}
			logger.Info().Str("ticker", ticker).Int("items", n).Msg("evidence backfilled")
		}
		if opts.ShortInterestSource != nil {
			n, err := mgr.IngestShortInterest(ctx, ticker)
			if err != nil {
				return fmt.Errorf("ingest short interest for %s: %w", ticker, err)
			}
			logger.Info().Str("ticker", ticker).Int("rows", n).Msg("short interest backfilled")
		}
	}

	return nil
}
