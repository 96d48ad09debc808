package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/domain"
	"github.com/vibe-gaming/auth-service/internal/repository"

	"github.com/google/uuid"
)

const (
	minRefreshTokenBytes = 16
	defaultIssueAttempts = 3
	defaultRefreshTTL    = 168 * time.Hour
)

// refreshTokenManager is the only writer of refresh token records.
type refreshTokenManager struct {
	repo          repository.RefreshTokens
	ttl           time.Duration
	tokenBytes    int
	issueAttempts int
	random        io.Reader
	now           func() time.Time
}

func newRefreshTokenManager(repo repository.RefreshTokens, cfg config.RefreshTokenConfig) *refreshTokenManager {
	tokenBytes := cfg.Bytes
	if tokenBytes < minRefreshTokenBytes {
		tokenBytes = minRefreshTokenBytes
	}

	attempts := cfg.IssueAttempts
	if attempts <= 0 {
		attempts = defaultIssueAttempts
	}

	// expires_at must stay after created_at
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}

	return &refreshTokenManager{
		repo:          repo,
		ttl:           ttl,
		tokenBytes:    tokenBytes,
		issueAttempts: attempts,
		random:        rand.Reader,
		now:           time.Now,
	}
}

func (m *refreshTokenManager) Issue(ctx context.Context, userID uuid.UUID) (*domain.RefreshToken, error) {
	for attempt := 0; attempt < m.issueAttempts; attempt++ {
		value, err := m.generate()
		if err != nil {
			return nil, fmt.Errorf("generate refresh token failed: %w", err)
		}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate refresh token id failed: %w", err)
		}

		now := m.now().UTC().Truncate(time.Microsecond)
		token := &domain.RefreshToken{
			ID:        id,
			UserID:    userID,
			Token:     value,
			ExpiresAt: now.Add(m.ttl),
			CreatedAt: now,
		}

		err = m.repo.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, fmt.Errorf("create refresh token failed: %w", err)
		}
	}

	return nil, ErrTokenGeneration
}

func (m *refreshTokenManager) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return m.find(ctx, token, m.repo.GetByToken)
}

func (m *refreshTokenManager) LockByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return m.find(ctx, token, m.repo.GetByTokenForUpdate)
}

func (m *refreshTokenManager) find(
	ctx context.Context,
	token string,
	get func(ctx context.Context, token string) (*domain.RefreshToken, error),
) (*domain.RefreshToken, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	rt, err := get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("get refresh token failed: %w", err)
	}

	return rt, nil
}

func (m *refreshTokenManager) IsActive(token *domain.RefreshToken) bool {
	return token.IsActive(m.now())
}

func (m *refreshTokenManager) Revoke(ctx context.Context, token *domain.RefreshToken) error {
	if token.Revoked {
		return nil
	}

	if err := m.repo.Revoke(ctx, token.ID); err != nil && !errors.Is(err, domain.ErrNoRowsAffected) {
		return fmt.Errorf("revoke refresh token failed: %w", err)
	}
	token.Revoked = true

	return nil
}

func (m *refreshTokenManager) Consume(ctx context.Context, token *domain.RefreshToken) error {
	if !m.IsActive(token) {
		return ErrTokenInactive
	}

	if err := m.repo.Revoke(ctx, token.ID); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrTokenInactive
		}
		return fmt.Errorf("revoke refresh token failed: %w", err)
	}
	token.Revoked = true

	return nil
}

func (m *refreshTokenManager) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := m.repo.RevokeAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user refresh tokens failed: %w", err)
	}

	return n, nil
}

func (m *refreshTokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens failed: %w", err)
	}

	return n, nil
}

func (m *refreshTokenManager) generate() (string, error) {
	b := make([]byte, m.tokenBytes)
	if _, err := io.ReadFull(m.random, b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
