package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkorolev/course-rag-assistant/internal/bootstrap"
	"github.com/pkorolev/course-rag-assistant/internal/config"
	"github.com/pkorolev/course-rag-assistant/internal/observability/logging"
	"github.com/pkorolev/course-rag-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.New("rag-worker", cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		WithQueue:  true,
		WithStream: true,
	})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	indexerMetrics := metrics.NewIndexerMetrics("rag-worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: indexerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAssignmentIngested(ctx, func(handlerCtx context.Context, assignmentID string) error {
		indexCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		start := time.Now()
		indexerMetrics.StartAssignment()
		chunks, err := app.IndexUC.IndexAssignment(indexCtx, assignmentID)
		indexerMetrics.FinishAssignment("rag-worker", chunks, time.Since(start), err)
		if err != nil {
			return err
		}

		slog.Info("assignment_indexed", "assignment_id", assignmentID, "chunks", chunks)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
