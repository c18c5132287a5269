package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

// RecordWriter is the pipeline sink of the service: it upserts the record and announces it.
type RecordWriter struct {
	repo      ports.RecordRepository
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func NewRecordWriter(repo ports.RecordRepository, publisher ports.EventPublisher, logger *slog.Logger) *RecordWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordWriter{repo: repo, publisher: publisher, logger: logger}
}

// SaveRecord fails only when persistence fails. A lost announcement is logged.
func (w *RecordWriter) SaveRecord(ctx context.Context, rec *domain.SalaysayRecord) error {
	if err := w.repo.SaveRecord(ctx, rec); err != nil {
		return fmt.Errorf("persist record: %w", err)
	}
	if w.publisher == nil {
		return nil
	}
	if err := w.publisher.PublishRecorded(ctx, rec.ID); err != nil {
		w.logger.Warn("record_event_publish_failed", "record_id", rec.ID, "error", err)
	}
	return nil
}
