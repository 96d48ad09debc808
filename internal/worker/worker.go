package worker

import (
	"context"

	"github.com/vibe-gaming/auth-service/internal/service"
)

type Workers struct {
	ExpiredTokensPurger ExpiredTokensPurger
}

type Deps struct {
	Services *service.Services
}

type ExpiredTokensPurger interface {
	Purge(ctx context.Context) (int64, error)
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		ExpiredTokensPurger: newExpiredTokensPurger(deps.Services.RefreshTokens),
	}
}
