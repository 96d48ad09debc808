package worker

import (
	"context"
	"time"

	"github.com/vibe-gaming/auth-service/internal/service"
	"github.com/vibe-gaming/auth-service/pkg/logger"

	"go.uber.org/zap"
)

const defaultPurgeInterval = time.Hour

type expiredTokensPurger struct {
	refreshTokens service.RefreshTokens
}

func newExpiredTokensPurger(refreshTokens service.RefreshTokens) *expiredTokensPurger {
	return &expiredTokensPurger{
		refreshTokens: refreshTokens,
	}
}

func (p *expiredTokensPurger) Purge(ctx context.Context) (int64, error) {
	start := time.Now()

	n, err := p.refreshTokens.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}

	logger.Info("expired refresh tokens purged",
		zap.Int64("count", n),
		zap.Duration("took", time.Since(start)),
	)

	return n, nil
}

// RunPurgeLoop purges every interval until ctx is done. It serves storages
// that live inside the API process and cannot be reached by the queue worker.
func RunPurgeLoop(ctx context.Context, purger ExpiredTokensPurger, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := purger.Purge(ctx); err != nil && ctx.Err() == nil {
				logger.Error("purge expired refresh tokens failed", zap.Error(err))
			}
		}
	}
}
