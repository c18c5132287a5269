package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

const defaultBatchConcurrency = 4

// BatchUseCase runs many uploads through synchronous pipelines with bounded parallelism.
type BatchUseCase struct {
	tracker     *Tracker
	concurrency int
}

func NewBatchUseCase(tracker *Tracker, concurrency int) *BatchUseCase {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &BatchUseCase{tracker: tracker, concurrency: concurrency}
}

// Run returns one status per upload in input order. Uploads not started before ctx ends are left zero.
func (uc *BatchUseCase) Run(ctx context.Context, uploads []domain.RawUpload) ([]domain.UploadStatus, error) {
	results := make([]domain.UploadStatus, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, upload := range uploads {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = uc.tracker.Process(gctx, upload)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
