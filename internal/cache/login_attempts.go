package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vibe-gaming/auth-service/internal/config"
)

const loginAttemptsKeyPrefix = "login_attempts:"

var (
	ErrLoginAttemptsExceeded = errors.New("login attempts exceeded")
	ErrRedisUnavailable      = errors.New("redis unavailable")
)

// LoginAttempts counts failed logins per username. A counter lives for the
// cooldown window starting at the first failure.
type LoginAttempts struct {
	redis       redis.UniversalClient
	maxAttempts int
	cooldown    time.Duration
}

func NewLoginAttempts(client redis.UniversalClient, cfg config.LoginThrottleConfig) *LoginAttempts {
	return &LoginAttempts{
		redis:       client,
		maxAttempts: cfg.MaxAttempts,
		cooldown:    cfg.Cooldown,
	}
}

// Check returns ErrLoginAttemptsExceeded once the failure budget is spent.
func (l *LoginAttempts) Check(ctx context.Context, username string) error {
	count, err := l.redis.Get(ctx, loginAttemptsKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(l.maxAttempts) {
		return ErrLoginAttemptsExceeded
	}

	return nil
}

func (l *LoginAttempts) Fail(ctx context.Context, username string) error {
	key := loginAttemptsKey(username)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return nil
}

func (l *LoginAttempts) Reset(ctx context.Context, username string) error {
	if err := l.redis.Del(ctx, loginAttemptsKey(username)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func loginAttemptsKey(username string) string {
	return loginAttemptsKeyPrefix + username
}
