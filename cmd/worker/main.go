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

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/bootstrap"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/config"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/logging"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/metrics"
)

const (
	serviceName      = "salaysay-worker"
	reprocessTimeout = 5 * time.Minute
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, logger, workerMetrics.Registerer())
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSReprocessSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeReprocess(ctx, func(handlerCtx context.Context, recordID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, reprocessTimeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartReprocess()
		err := app.ReprocessUC.ReprocessByID(processCtx, recordID)
		workerMetrics.FinishReprocess(serviceName, time.Since(start), err)
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
