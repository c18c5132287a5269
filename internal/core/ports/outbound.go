package ports

import (
	"context"
	"io"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// TextLayoutExtractor pulls layout-aware text out of PDF bytes.
type TextLayoutExtractor interface {
	Extract(ctx context.Context, pdf []byte) (domain.ExtractedText, error)
}

// ImageNormalizer turns a raster upload into a single-page searchable PDF.
// Decode covers the converting stage, Render runs OCR and draws the page.
type ImageNormalizer interface {
	Decode(ctx context.Context, upload domain.RawUpload) (*domain.RasterImage, error)
	Render(ctx context.Context, img *domain.RasterImage) ([]byte, error)
}

// Recognizer runs OCR. It returns an empty string when recognition fails.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, language string) string
}

// Translator translates text to English. It returns the input unchanged when translation fails.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// RecordSink receives the finalized record of a pipeline.
type RecordSink interface {
	SaveRecord(ctx context.Context, rec *domain.SalaysayRecord) error
}

// RecordRepository persists and reads salaysay records.
type RecordRepository interface {
	RecordSink
	GetRecord(ctx context.Context, id string) (*domain.SalaysayRecord, error)
	ListRecords(ctx context.Context, limit int) ([]domain.SalaysayRecord, error)
}

// ObjectStorage stores raw uploads.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher announces persisted records to downstream collaborators.
type EventPublisher interface {
	PublishRecorded(ctx context.Context, recordID string) error
}

// ReprocessQueue carries requests to rerun the pipeline for a stored record.
type ReprocessQueue interface {
	PublishReprocess(ctx context.Context, recordID string) error
	SubscribeReprocess(ctx context.Context, handler func(context.Context, string) error) error
}
