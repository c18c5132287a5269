package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/adapters/batchdir"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/bootstrap"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/config"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/usecase"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/export/xlsx"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/logging"
)

func main() {
	dir := flag.String("dir", "", "directory of letters to process (PDF, PNG, JPEG)")
	out := flag.String("out", "salaysay.xlsx", "path of the workbook to write")
	concurrency := flag.Int("concurrency", 4, "letters processed in parallel")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: salaysay-batch -dir <letters> [-out salaysay.xlsx] [-concurrency 4]")
		os.Exit(2)
	}

	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("salaysay-batch", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploads, skipped, err := batchdir.LoadDirectory(*dir)
	if err != nil {
		log.Fatalf("load directory: %v", err)
	}
	for _, s := range skipped {
		logger.Warn("batch_file_skipped", "path", s.Path, "reason", s.Reason)
	}

	core := bootstrap.NewIntakeCore(cfg, logger)
	sink := batchdir.NewRecordCollector()
	tracker := usecase.NewTracker(core.Normalizer, core.Extractor, core.Analyzer, sink, nil, logger)

	statuses, err := usecase.NewBatchUseCase(tracker, *concurrency).Run(ctx, uploads)
	if err != nil {
		log.Fatalf("batch run: %v", err)
	}

	rows := make([]xlsx.Row, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, xlsx.RowFromStatus(status))
	}
	data, err := xlsx.New(logger).Render(rows)
	if err != nil {
		log.Fatalf("render workbook: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write workbook: %v", err)
	}
	logger.Info("batch_done", "processed", len(statuses), "skipped", len(skipped), "records", sink.Len(), "out", *out)
}
