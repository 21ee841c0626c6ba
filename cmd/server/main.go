// Command server runs the webhook intake: it validates record-store change
// notifications and manual triggers and queues submissions for the worker.
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

	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/httpserver"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/observability"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/queue/redpanda"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/adapter/tracker"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/app"
	"github.com/Ruhaan-Munjul21/VentureConnect-LFG/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
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

	tr, err := tracker.NewFromURL(cfg.RedisURL)
	if err != nil {
		slog.Error("tracker init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = tr.Close() }()

	producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		slog.Error("redpanda producer connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer producer.Close()

	checks := app.BuildReadinessChecks(
		app.Dependency{Name: "redis", Pinger: tr},
		app.Dependency{Name: "queue", Pinger: producer},
	)
	srv := httpserver.NewServer(cfg, producer, tr, checks...)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
