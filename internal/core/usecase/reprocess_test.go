package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

type recordRepoFake struct {
	records map[string]domain.SalaysayRecord
	saveErr error
	saved   []string
}

func (f *recordRepoFake) SaveRecord(_ context.Context, rec *domain.SalaysayRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.records == nil {
		f.records = map[string]domain.SalaysayRecord{}
	}
	f.records[rec.ID] = *rec
	f.saved = append(f.saved, rec.ID)
	return nil
}

func (f *recordRepoFake) GetRecord(_ context.Context, id string) (*domain.SalaysayRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get record", errors.New(id))
	}
	return &rec, nil
}

func (f *recordRepoFake) ListRecords(context.Context, int) ([]domain.SalaysayRecord, error) {
	out := make([]domain.SalaysayRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

type reprocessQueueFake struct {
	published []string
	err       error
}

func (f *reprocessQueueFake) PublishReprocess(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func (f *reprocessQueueFake) SubscribeReprocess(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func newReprocessFixture(text string) (*ReprocessUseCase, *recordRepoFake, *reprocessQueueFake) {
	repo := &recordRepoFake{records: map[string]domain.SalaysayRecord{
		"rec-1": {ID: "rec-1", FileName: "letter.pdf", MimeType: domain.MimePDF, StorageKey: "rec-1_letter.pdf", Status: domain.RecordFailed},
	}}
	storage := &ingestStorageFake{savedKey: "rec-1_letter.pdf", savedBody: "%PDF-1.4"}
	queue := &reprocessQueueFake{}
	fixture := newPipelineFixture(text)
	tracker := NewTracker(fixture.normalizer, fixture.extractor, NewDocumentAnalyzer(nil, nil), repo, nil, nil)
	return NewReprocessUseCase(repo, storage, queue, tracker), repo, queue
}

func TestRequestReprocessPublishes(t *testing.T) {
	uc, _, queue := newReprocessFixture(englishLetter)

	if err := uc.RequestReprocess(context.Background(), "rec-1"); err != nil {
		t.Fatalf("RequestReprocess() error = %v", err)
	}
	if len(queue.published) != 1 || queue.published[0] != "rec-1" {
		t.Fatalf("expected rec-1 to be queued, got %v", queue.published)
	}
}

func TestRequestReprocessUnknownRecord(t *testing.T) {
	uc, _, queue := newReprocessFixture(englishLetter)

	err := uc.RequestReprocess(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(queue.published) != 0 {
		t.Fatalf("unknown records must not be queued")
	}
}

func TestReprocessByIDOverwritesRecord(t *testing.T) {
	uc, repo, _ := newReprocessFixture(englishLetter)

	if err := uc.ReprocessByID(context.Background(), "rec-1"); err != nil {
		t.Fatalf("ReprocessByID() error = %v", err)
	}
	rec := repo.records["rec-1"]
	if rec.Status != domain.RecordProcessed {
		t.Fatalf("expected processed record, got %s", rec.Status)
	}
	if rec.Info.StudentID != "21-12345-678" {
		t.Fatalf("expected re-extracted student id, got %q", rec.Info.StudentID)
	}
	if rec.StorageKey != "rec-1_letter.pdf" {
		t.Fatalf("storage key must be preserved, got %q", rec.StorageKey)
	}
}

func TestReprocessByIDReportsFailedPipeline(t *testing.T) {
	uc, repo, _ := newReprocessFixture(englishLetter)
	repo.saveErr = errors.New("db down")

	err := uc.ReprocessByID(context.Background(), "rec-1")
	if err == nil || !strings.Contains(err.Error(), "ended in error") {
		t.Fatalf("expected pipeline failure, got %v", err)
	}
}
