package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/config"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/usecase"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/converter/imagepdf"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/export/xlsx"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/extractor/pdflayout"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/ocr/tesseract"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/queue/nats"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/repository/postgres"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/resilience"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/storage/localfs"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/storage/s3store"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/translation/libretranslate"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/observability/metrics"
)

// IntakeCore holds the stateless stage implementations shared by every entrypoint.
type IntakeCore struct {
	Normalizer ports.ImageNormalizer
	Extractor  ports.TextLayoutExtractor
	Analyzer   *usecase.DocumentAnalyzer
}

func NewIntakeCore(cfg config.Config, logger *slog.Logger) IntakeCore {
	recognizer := tesseract.New(tesseract.ExecRunner{Logger: logger}, tesseract.Options{
		Binary:      cfg.TesseractBinary,
		TessdataDir: cfg.TesseractDataDir,
		Timeout:     time.Duration(cfg.OCRTimeoutSeconds) * time.Second,
	}, logger)

	translatorPolicy := resilience.DefaultConfig()
	translatorPolicy.RetryMaxAttempts = cfg.TranslateRetryAttempts
	translatorPolicy.AttemptTimeout = time.Duration(cfg.TranslateTimeoutSeconds) * time.Second
	translator := libretranslate.New(cfg.TranslateURL, libretranslate.Options{
		APIKey:            cfg.TranslateAPIKey,
		RequestsPerSecond: cfg.TranslateRPS,
		Burst:             cfg.TranslateBurst,
		Resilience:        resilience.NewExecutor(translatorPolicy, logger),
	}, logger)

	return IntakeCore{
		Normalizer: imagepdf.New(recognizer, logger),
		Extractor:  pdflayout.New(logger),
		Analyzer:   usecase.NewDocumentAnalyzer(translator, logger),
	}
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    *nats.Queue
	Records  ports.RecordRepository
	Tracker  *usecase.Tracker
	Exporter *xlsx.Exporter

	IngestUC    ports.UploadIntake
	ReprocessUC ports.RecordReprocessor

	closeFn func()
}

// New wires the service. Pipeline metrics are registered on registerer when it is not nil.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, registerer prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewRecordRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, natsOptions(cfg, logger))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var observer ports.PipelineObserver
	if registerer != nil {
		observer = metrics.NewIntakeMetrics("salaysay", registerer)
	}

	core := NewIntakeCore(cfg, logger)
	writer := usecase.NewRecordWriter(repo, queue, logger)
	tracker := usecase.NewTracker(core.Normalizer, core.Extractor, core.Analyzer, writer, observer, logger)
	tracker.SetRetain(cfg.TrackerRetain)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Queue:    queue,
		Records:  repo,
		Tracker:  tracker,
		Exporter: xlsx.New(logger),

		IngestUC:    usecase.NewIngestUploadUseCase(storage, tracker),
		ReprocessUC: usecase.NewReprocessUseCase(repo, storage, queue, tracker),

		closeFn: func() {
			tracker.Wait()
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func natsOptions(cfg config.Config, logger *slog.Logger) nats.Options {
	retry := cfg.NATSRetryOnFailedConnect
	return nats.Options{
		RecordedSubject:      cfg.NATSRecordedSubject,
		ReprocessSubject:     cfg.NATSReprocessSubject,
		ConnectTimeout:       time.Duration(cfg.NATSConnectTimeoutSeconds) * time.Second,
		ReconnectWait:        time.Duration(cfg.NATSReconnectWaitSeconds) * time.Second,
		MaxReconnects:        cfg.NATSMaxReconnects,
		RetryOnFailedConnect: &retry,
		ResilienceExecutor:   resilience.NewExecutor(resilience.DefaultConfig(), logger),
		Logger:               logger,
	}
}

func newObjectStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return localfs.New(cfg.StoragePath)
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close waits for running pipelines and releases connections.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
