package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if key != f.savedKey {
		return nil, domain.WrapError(domain.ErrNotFound, "open", errors.New(key))
	}
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

func TestIngestUploadSuccess(t *testing.T) {
	fixture := newPipelineFixture(englishLetter)
	storage := &ingestStorageFake{}
	uc := NewIngestUploadUseCase(storage, fixture.tracker)

	status, err := uc.Upload(context.Background(), "excuse letter 1.pdf", domain.MimePDF, bytes.NewBufferString("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if status.ID == "" {
		t.Fatalf("expected upload id")
	}
	if status.State != domain.StatePending {
		t.Fatalf("expected pending status, got %s", status.State)
	}
	if !strings.HasSuffix(storage.savedKey, "_excuse_letter_1.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "%PDF-1.4 body" {
		t.Fatalf("unexpected stored body %q", storage.savedBody)
	}

	fixture.tracker.Wait()
	final, ok := fixture.tracker.Status(status.ID)
	if !ok || final.State != domain.StateCompleted {
		t.Fatalf("expected completed pipeline, got %+v", final)
	}
	saved := fixture.sink.saved()
	if len(saved) != 1 || saved[0].StorageKey != storage.savedKey {
		t.Fatalf("expected record pointing at stored upload, got %+v", saved)
	}
}

func TestIngestUploadRejectsInvalidInput(t *testing.T) {
	fixture := newPipelineFixture(englishLetter)
	storage := &ingestStorageFake{}
	uc := NewIngestUploadUseCase(storage, fixture.tracker)

	_, err := uc.Upload(context.Background(), "notes.txt", "text/plain", bytes.NewBufferString("hello"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for text/plain, got %v", err)
	}

	oversized := bytes.Repeat([]byte("a"), domain.MaxUploadBytes+10)
	_, err = uc.Upload(context.Background(), "big.png", domain.MimePNG, bytes.NewReader(oversized))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for oversized file, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("rejected uploads must not be stored")
	}
	if len(fixture.tracker.Statuses()) != 0 {
		t.Fatalf("rejected uploads must not start a pipeline")
	}
}

func TestIngestUploadStorageError(t *testing.T) {
	fixture := newPipelineFixture(englishLetter)
	uc := NewIngestUploadUseCase(&ingestStorageFake{err: errors.New("disk full")}, fixture.tracker)

	_, err := uc.Upload(context.Background(), "letter.pdf", domain.MimePDF, bytes.NewBufferString("%PDF"))
	if err == nil || !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":       "passwd",
		"Sulat ng Paumanhin.pdf": "Sulat_ng_Paumanhin.pdf",
		"ñame.png":               "_ame.png",
		"":                       "upload.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
