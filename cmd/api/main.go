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

	httpadapter "github.com/pkorolev/course-rag-assistant/internal/adapters/http"
	"github.com/pkorolev/course-rag-assistant/internal/bootstrap"
	"github.com/pkorolev/course-rag-assistant/internal/config"
	"github.com/pkorolev/course-rag-assistant/internal/observability/logging"
	"github.com/pkorolev/course-rag-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.New("rag-api", cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	examples, err := config.LoadExamples(cfg.ExamplesPath)
	if err != nil {
		log.Fatalf("load examples: %v", err)
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{WithGraph: true})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("rag-api")
	router := httpadapter.NewRouter(app.ChatUC, app.Graph, httpMetrics, httpadapter.RouterOptions{
		Examples:       examples,
		RateLimitRPS:   float64(cfg.APIRateLimitRPS),
		RateLimitBurst: cfg.APIRateLimitBurst,
		MaxInFlight:    cfg.APIMaxInFlight,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
