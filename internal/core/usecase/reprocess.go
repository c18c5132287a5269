package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

type ReprocessUseCase struct {
	repo    ports.RecordRepository
	storage ports.ObjectStorage
	queue   ports.ReprocessQueue
	tracker *Tracker
}

func NewReprocessUseCase(
	repo ports.RecordRepository,
	storage ports.ObjectStorage,
	queue ports.ReprocessQueue,
	tracker *Tracker,
) *ReprocessUseCase {
	return &ReprocessUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		tracker: tracker,
	}
}

// RequestReprocess checks that the record exists and queues it for the worker.
func (uc *ReprocessUseCase) RequestReprocess(ctx context.Context, recordID string) error {
	if _, err := uc.repo.GetRecord(ctx, recordID); err != nil {
		return fmt.Errorf("fetch record: %w", err)
	}
	if err := uc.queue.PublishReprocess(ctx, recordID); err != nil {
		return fmt.Errorf("publish reprocess event: %w", err)
	}
	return nil
}

// ReprocessByID reruns the pipeline over the stored upload. The pipeline sink overwrites the record.
func (uc *ReprocessUseCase) ReprocessByID(ctx context.Context, recordID string) error {
	rec, err := uc.repo.GetRecord(ctx, recordID)
	if err != nil {
		return fmt.Errorf("fetch record: %w", err)
	}
	content, err := uc.loadUpload(ctx, rec.StorageKey)
	if err != nil {
		return err
	}

	status := uc.tracker.Process(ctx, domain.RawUpload{
		ID:         rec.ID,
		FileName:   rec.FileName,
		MimeType:   rec.MimeType,
		Content:    content,
		Size:       int64(len(content)),
		StorageKey: rec.StorageKey,
	})
	if status.State != domain.StateCompleted {
		return fmt.Errorf("reprocess record %s ended in %s: %s", recordID, status.State, status.Notice)
	}
	return nil
}

func (uc *ReprocessUseCase) loadUpload(ctx context.Context, key string) ([]byte, error) {
	rc, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open stored upload: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, domain.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read stored upload: %w", err)
	}
	return content, nil
}
