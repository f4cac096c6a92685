// Package main implements the crawled-posting ingest worker. It consumes
// postings from NATS into the Redis feed and sweeps expired postings out on
// a schedule.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/ingest"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/metrics"
	"github.com/JobSwipeAI/jobswipe-mvp/pkg/natsutil"
	"github.com/JobSwipeAI/jobswipe-mvp/store/redisfeed"
)

// Config holds all environment-based configuration.
type Config struct {
	NATSURL     string
	RedisURL    string
	MetricsPort string
	IngestRate  int
	SweepSpec   string
}

func loadConfig() Config {
	return Config{
		NATSURL:     envOr("NATS_URL", "nats://localhost:4222"),
		RedisURL:    envOr("REDIS_URL", "redis://localhost:6379/0"),
		MetricsPort: envOr("METRICS_PORT", "9091"),
		IngestRate:  envIntOr("INGEST_RATE", ingest.DefaultRate),
		SweepSpec:   envOr("SWEEP_SPEC", "@every 15m"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil && err != context.Canceled {
		logger.Error("ingest worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisfeed.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer rdb.Close()
	feed := redisfeed.New(rdb, logger)

	nc, err := natsutil.Connect(cfg.NATSURL, "jobswipe-ingest")
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	reg := metrics.New()
	worker := ingest.NewWorker(feed, nc, ingest.Opts{
		RatePerSecond: cfg.IngestRate,
		Logger:        logger,
		Metrics:       reg,
	})

	// Expiry sweep on a cron schedule.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSpec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := feed.Prune(sweepCtx, time.Now())
		if err != nil {
			logger.Error("feed sweep failed", "err", err)
			return
		}
		if n > 0 {
			logger.Info("feed sweep", "pruned", n)
		}
	}); err != nil {
		return fmt.Errorf("cron spec %q: %w", cfg.SweepSpec, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Metrics endpoint.
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: reg.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", "err", err)
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutCtx)
	}()

	return worker.Run(ctx)
}
