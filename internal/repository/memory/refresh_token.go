package memory

import (
	"context"
	"time"

	"github.com/vibe-gaming/auth-service/internal/domain"

	"github.com/google/uuid"
)

type refreshTokenRepository struct {
	store *Store
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.store.tokenIndex[token.Token]; ok {
		return domain.ErrDuplicateEntry
	}
	if _, ok := r.store.tokens[token.ID]; ok {
		return domain.ErrDuplicateEntry
	}
	if _, ok := r.store.users[token.UserID]; !ok {
		return domain.ErrNotFound
	}

	r.store.tokens[token.ID] = *token
	r.store.tokenIndex[token.Token] = token.ID

	return nil
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	id, ok := r.store.tokenIndex[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rt := r.store.tokens[id]

	return &rt, nil
}

func (r *refreshTokenRepository) GetByTokenForUpdate(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return r.GetByToken(ctx, token)
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	rt, ok := r.store.tokens[id]
	if !ok || rt.Revoked {
		return domain.ErrNoRowsAffected
	}
	rt.Revoked = true
	r.store.tokens[id] = rt

	return nil
}

func (r *refreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var revoked int64
	for id, rt := range r.store.tokens {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			r.store.tokens[id] = rt
			revoked++
		}
	}

	return revoked, nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(ctx, func(rt domain.RefreshToken) bool {
		return rt.IsExpired(now)
	})
}

func (r *refreshTokenRepository) deleteWhere(ctx context.Context, match func(rt domain.RefreshToken) bool) (int64, error) {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var deleted int64
	for id, rt := range r.store.tokens {
		if match(rt) {
			delete(r.store.tokens, id)
			delete(r.store.tokenIndex, rt.Token)
			deleted++
		}
	}

	return deleted, nil
}

func (r *refreshTokenRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var count int64
	for _, rt := range r.store.tokens {
		if rt.UserID == userID && rt.IsActive(now) {
			count++
		}
	}

	return count, nil
}
