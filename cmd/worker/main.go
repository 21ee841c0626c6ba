// Command worker consumes queued submissions and runs the evaluation
// pipeline on each. With POLL_INTERVAL set it also queues pending records.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/queue/redpanda"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/tracker"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/app"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
)

const (
	consumerGroup       = "pitch-deck-evaluator-workers"
	pollerTransactionID = "pitch-deck-evaluator-poller"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := app.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	tr, err := tracker.NewFromURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	consumer, err := redpanda.NewConsumer(cfg.KafkaBrokers, consumerGroup, app.SubmissionHandler(comps.Pipeline, tr, logger))
	if err != nil {
		return err
	}
	defer consumer.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveMetrics(ctx, cfg.MetricsPort) })
	g.Go(func() error { return consumer.Run(ctx) })
	if cfg.PollInterval > 0 {
		producer, err := redpanda.NewProducerWithTopic(cfg.KafkaBrokers, pollerTransactionID, redpanda.TopicSubmissions)
		if err != nil {
			return err
		}
		defer producer.Close()
		poller := app.Poller{
			Store:     comps.Store,
			Queue:     producer,
			Tracker:   tr,
			BatchSize: comps.Pipeline.Opts.BatchSize,
			Logger:    logger,
		}
		g.Go(func() error { return poller.Run(ctx, cfg.PollInterval) })
	}
	slog.Info("worker started", slog.String("env", cfg.AppEnv), slog.Duration("poll_interval", cfg.PollInterval))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("worker stopped cleanly")
	return nil
}

func serveMetrics(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("op=worker.serveMetrics: %w", err)
	}
	return nil
}
