package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/SigmaByteKing/neu-salaysay-tracker/internal/adapters/http"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/bootstrap"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/config"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/logging"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("salaysay-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("salaysay-api")
	app, err := bootstrap.New(ctx, cfg, logger, httpMetrics.Registerer())
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Dependencies{
		Intake:    app.IngestUC,
		Tracker:   app.Tracker,
		Records:   app.Records,
		Reprocess: app.ReprocessUC,
		Exporter:  app.Exporter,
		Metrics:   httpMetrics,
		Logger:    logger,
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
