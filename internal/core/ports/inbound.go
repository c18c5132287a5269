package ports

import (
	"context"
	"io"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// UploadIntake is the inbound contract for accepting files into the pipeline.
type UploadIntake interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.UploadStatus, error)
}

// UploadTracker exposes the progress of running pipelines.
type UploadTracker interface {
	Statuses() []domain.UploadStatus
	Status(id string) (domain.UploadStatus, bool)
	Discard(id string) error
}

// RecordReader is the inbound read model for persisted records.
type RecordReader interface {
	GetRecord(ctx context.Context, id string) (*domain.SalaysayRecord, error)
	ListRecords(ctx context.Context, limit int) ([]domain.SalaysayRecord, error)
}

// RecordReprocessor reruns the pipeline for stored records.
type RecordReprocessor interface {
	RequestReprocess(ctx context.Context, recordID string) error
	ReprocessByID(ctx context.Context, recordID string) error
}
