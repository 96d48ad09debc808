package processor

import (
	"context"
	"fmt"

	"github.com/vibe-gaming/auth-service/internal/worker"

	"github.com/hibiken/asynq"
)

type purgeExpiredTokensProcessor struct {
	workers *worker.Workers
}

func NewPurgeExpiredTokensProcessor(workers *worker.Workers) *purgeExpiredTokensProcessor {
	return &purgeExpiredTokensProcessor{
		workers: workers,
	}
}

func (p *purgeExpiredTokensProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if _, err := p.workers.ExpiredTokensPurger.Purge(ctx); err != nil {
		return fmt.Errorf("purge expired refresh tokens failed: %w", err)
	}

	return nil
}
