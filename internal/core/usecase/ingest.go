package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

type IngestUploadUseCase struct {
	storage ports.ObjectStorage
	tracker *Tracker
}

func NewIngestUploadUseCase(storage ports.ObjectStorage, tracker *Tracker) *IngestUploadUseCase {
	return &IngestUploadUseCase{
		storage: storage,
		tracker: tracker,
	}
}

// Upload validates and stores the raw file, then starts its pipeline.
func (uc *IngestUploadUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.UploadStatus, error) {
	content, err := io.ReadAll(io.LimitReader(body, domain.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if err := domain.ValidateUpload(mimeType, int64(len(content))); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	status := uc.tracker.Submit(ctx, domain.RawUpload{
		ID:         id,
		FileName:   filename,
		MimeType:   mimeType,
		Content:    content,
		Size:       int64(len(content)),
		StorageKey: storageKey,
	})
	return &status, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "upload.bin"
	}
	return base
}
