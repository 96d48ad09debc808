package service

import (
	"context"
	"errors"

	"github.com/vibe-gaming/auth-service/internal/cache"
)

// LoginThrottle tracks failed logins per username.
type LoginThrottle interface {
	Check(ctx context.Context, username string) error
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

type noopLoginThrottle struct{}

func (noopLoginThrottle) Check(context.Context, string) error { return nil }
func (noopLoginThrottle) Fail(context.Context, string) error  { return nil }
func (noopLoginThrottle) Reset(context.Context, string) error { return nil }

func isThrottled(err error) bool {
	return errors.Is(err, cache.ErrLoginAttemptsExceeded)
}
