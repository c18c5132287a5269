package ports

import (
	"time"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

// PipelineObserver is notified about pipeline progress, typically to record metrics.
type PipelineObserver interface {
	ObserveTransition(from, to domain.UploadState)
	ObservePipeline(final domain.UploadState, violation domain.ViolationType, duration time.Duration)
}
