package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

var errPipelineDiscarded = errors.New("pipeline discarded")

const (
	noticeConversion = "The image could not be converted to a searchable PDF. Default details were recorded."
	noticeExtraction = "The PDF text could not be read. Default details were recorded."
	noticeStorage    = "The record could not be saved."
	noticeGeneric    = "The document could not be processed. Default details were recorded."
)

// pipelineDeps are the collaborators shared by every pipeline of a tracker. They carry no per-file state.
type pipelineDeps struct {
	normalizer ports.ImageNormalizer
	extractor  ports.TextLayoutExtractor
	analyzer   *DocumentAnalyzer
	sink       ports.RecordSink
	observer   ports.PipelineObserver
	logger     *slog.Logger
	now        func() time.Time
}

// IntakePipeline processes one upload. It owns its state and is driven only through domain.Transition.
type IntakePipeline struct {
	deps   *pipelineDeps
	upload domain.RawUpload

	mu        sync.RWMutex
	state     domain.UploadState
	notice    string
	text      string
	info      *domain.DocumentInfo
	discarded bool
	startedAt time.Time
	updatedAt time.Time
}

func newIntakePipeline(deps *pipelineDeps, upload domain.RawUpload) *IntakePipeline {
	now := deps.now()
	return &IntakePipeline{
		deps:      deps,
		upload:    upload,
		state:     domain.StatePending,
		startedAt: now,
		updatedAt: now,
	}
}

func (p *IntakePipeline) ID() string {
	return p.upload.ID
}

// Run drives the pipeline to a terminal state. A stage failure ends in the error state with
// the fallback DocumentInfo. A discarded pipeline stops at its next transition.
func (p *IntakePipeline) Run(ctx context.Context) domain.UploadStatus {
	started := p.deps.now()
	err := p.run(ctx)
	// a stage still in flight when the upload was discarded may fail afterwards; its result is ignored
	if errors.Is(err, errPipelineDiscarded) || (err != nil && p.isDiscarded()) {
		p.deps.logger.Info("pipeline_discarded", "upload_id", p.upload.ID, "file", p.upload.FileName)
		return p.Status()
	}
	if err != nil {
		p.fail(ctx, err)
	}

	status := p.Status()
	violation := domain.ViolationOther
	if status.Info != nil {
		violation = status.Info.ViolationType
	}
	p.deps.observer.ObservePipeline(status.State, violation, p.deps.now().Sub(started))
	p.deps.logger.Info(
		"pipeline_finished",
		"upload_id", p.upload.ID,
		"state", status.State,
		"violation_type", violation,
		"duration_ms", p.deps.now().Sub(started).Milliseconds(),
	)
	return status
}

func (p *IntakePipeline) run(ctx context.Context) error {
	document := p.upload.Content
	if !p.upload.IsPDF() {
		converted, err := p.convert(ctx)
		if err != nil {
			return err
		}
		document = converted
	}

	if err := p.advance(domain.EventAnalyze, nil); err != nil {
		return err
	}
	extracted, err := p.deps.extractor.Extract(ctx, document)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	p.setText(extracted.Text)
	info := p.deps.analyzer.Analyze(ctx, extracted.Text, p.deps.now())

	if err := p.advance(domain.EventUpload, nil); err != nil {
		return err
	}
	if err := p.deps.sink.SaveRecord(ctx, p.record(info, domain.RecordProcessed, "")); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return p.advance(domain.EventComplete, &info)
}

func (p *IntakePipeline) convert(ctx context.Context) ([]byte, error) {
	if err := p.advance(domain.EventConvert, nil); err != nil {
		return nil, err
	}
	img, err := p.deps.normalizer.Decode(ctx, p.upload)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := p.advance(domain.EventRecognize, nil); err != nil {
		return nil, err
	}
	document, err := p.deps.normalizer.Render(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("render searchable pdf: %w", err)
	}
	return document, nil
}

// advance applies event to the current state. info is attached together with the new state.
func (p *IntakePipeline) advance(event domain.Event, info *domain.DocumentInfo) error {
	p.mu.Lock()
	if p.discarded {
		p.mu.Unlock()
		return errPipelineDiscarded
	}
	from := p.state
	next, err := domain.Transition(from, event)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.state = next
	p.updatedAt = p.deps.now()
	if info != nil {
		p.info = info
	}
	p.mu.Unlock()

	p.deps.observer.ObserveTransition(from, next)
	p.deps.logger.Debug("pipeline_transition", "upload_id", p.upload.ID, "from", from, "to", next, "event", event)
	return nil
}

// fail moves the pipeline to the error state with the fallback record. The fallback is handed to
// the sink unless the sink itself was the failing stage.
func (p *IntakePipeline) fail(ctx context.Context, cause error) {
	p.mu.RLock()
	from := p.state
	text := p.text
	p.mu.RUnlock()

	fallback := domain.FallbackDocumentInfo(p.deps.now(), text)
	notice := failureNotice(from, cause)
	p.deps.logger.Warn("pipeline_failed", "upload_id", p.upload.ID, "state", from, "error", cause)

	if from != domain.StateUploading {
		if err := p.deps.sink.SaveRecord(ctx, p.record(fallback, domain.RecordFailed, notice)); err != nil {
			p.deps.logger.Error("fallback_record_save_failed", "upload_id", p.upload.ID, "error", err)
		}
	}

	p.mu.Lock()
	next, err := domain.Transition(p.state, domain.EventFail)
	if err == nil {
		p.state = next
	}
	p.notice = notice
	p.info = &fallback
	p.updatedAt = p.deps.now()
	p.mu.Unlock()

	if err == nil {
		p.deps.observer.ObserveTransition(from, next)
	}
}

func failureNotice(state domain.UploadState, err error) string {
	switch {
	case domain.IsKind(err, domain.ErrConversion):
		return noticeConversion
	case domain.IsKind(err, domain.ErrExtraction):
		return noticeExtraction
	case state == domain.StateUploading:
		return noticeStorage
	default:
		return noticeGeneric
	}
}

func (p *IntakePipeline) setText(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
}

func (p *IntakePipeline) isDiscarded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.discarded
}

// discard marks the pipeline as dropped. Only pipelines that have not started analyzing may be discarded.
func (p *IntakePipeline) discard() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discarded {
		return nil
	}
	if !p.state.Discardable() {
		return domain.WrapError(domain.ErrDiscardRejected, "discard upload", fmt.Errorf("upload %s is %s", p.upload.ID, p.state))
	}
	p.discarded = true
	return nil
}

func (p *IntakePipeline) record(info domain.DocumentInfo, status domain.RecordStatus, notice string) *domain.SalaysayRecord {
	return &domain.SalaysayRecord{
		ID:         p.upload.ID,
		FileName:   p.upload.FileName,
		MimeType:   p.upload.MimeType,
		StorageKey: p.upload.StorageKey,
		Status:     status,
		Notice:     notice,
		Info:       info,
		CreatedAt:  p.startedAt,
		UpdatedAt:  p.deps.now(),
	}
}

// Status returns a snapshot safe to hand to other goroutines.
func (p *IntakePipeline) Status() domain.UploadStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := domain.UploadStatus{
		ID:        p.upload.ID,
		FileName:  p.upload.FileName,
		MimeType:  p.upload.MimeType,
		State:     p.state,
		Notice:    p.notice,
		StartedAt: p.startedAt,
		UpdatedAt: p.updatedAt,
	}
	if p.info != nil {
		info := *p.info
		status.Info = &info
	}
	return status
}

type noopObserver struct{}

func (noopObserver) ObserveTransition(domain.UploadState, domain.UploadState) {}

func (noopObserver) ObservePipeline(domain.UploadState, domain.ViolationType, time.Duration) {}
