package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/ports"
)

const defaultTrackerRetain = 500

// Tracker maps upload IDs to their pipelines and feeds the progress display.
type Tracker struct {
	deps   *pipelineDeps
	retain int

	mu        sync.Mutex
	pipelines map[string]*IntakePipeline
	order     []string
	wg        sync.WaitGroup
}

func NewTracker(
	normalizer ports.ImageNormalizer,
	extractor ports.TextLayoutExtractor,
	analyzer *DocumentAnalyzer,
	sink ports.RecordSink,
	observer ports.PipelineObserver,
	logger *slog.Logger,
) *Tracker {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		deps: &pipelineDeps{
			normalizer: normalizer,
			extractor:  extractor,
			analyzer:   analyzer,
			sink:       sink,
			observer:   observer,
			logger:     logger,
			now:        func() time.Time { return time.Now().UTC() },
		},
		retain:    defaultTrackerRetain,
		pipelines: make(map[string]*IntakePipeline),
	}
}

// SetRetain bounds how many finished pipelines stay visible. Running pipelines are never evicted.
func (t *Tracker) SetRetain(n int) {
	if n <= 0 {
		n = defaultTrackerRetain
	}
	t.mu.Lock()
	t.retain = n
	t.mu.Unlock()
}

// Submit registers a pipeline for upload and runs it in the background.
// The run is detached from ctx so a finished request does not abort processing.
func (t *Tracker) Submit(ctx context.Context, upload domain.RawUpload) domain.UploadStatus {
	p := newIntakePipeline(t.deps, upload)

	t.mu.Lock()
	t.pipelines[upload.ID] = p
	t.order = append(t.order, upload.ID)
	t.evictLocked()
	t.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		p.Run(runCtx)
	}()
	return p.Status()
}

// Process runs a pipeline synchronously without registering it.
func (t *Tracker) Process(ctx context.Context, upload domain.RawUpload) domain.UploadStatus {
	return newIntakePipeline(t.deps, upload).Run(ctx)
}

// Statuses lists pipelines in submission order.
func (t *Tracker) Statuses() []domain.UploadStatus {
	t.mu.Lock()
	pipelines := make([]*IntakePipeline, 0, len(t.order))
	for _, id := range t.order {
		pipelines = append(pipelines, t.pipelines[id])
	}
	t.mu.Unlock()

	out := make([]domain.UploadStatus, 0, len(pipelines))
	for _, p := range pipelines {
		out = append(out, p.Status())
	}
	return out
}

func (t *Tracker) Status(id string) (domain.UploadStatus, bool) {
	t.mu.Lock()
	p, ok := t.pipelines[id]
	t.mu.Unlock()
	if !ok {
		return domain.UploadStatus{}, false
	}
	return p.Status(), true
}

// Discard drops a pipeline that has not reached analyzing. In-flight OCR is not interrupted;
// its result is ignored.
func (t *Tracker) Discard(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pipelines[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "discard upload", fmt.Errorf("upload %s", id))
	}
	if err := p.discard(); err != nil {
		return err
	}
	t.removeLocked(id)
	return nil
}

// Wait blocks until every submitted pipeline has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) removeLocked(id string) {
	delete(t.pipelines, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

func (t *Tracker) evictLocked() {
	excess := len(t.order) - t.retain
	if excess <= 0 {
		return
	}
	kept := t.order[:0]
	for _, id := range t.order {
		if excess > 0 && t.pipelines[id].Status().State.Terminal() {
			delete(t.pipelines, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}
