package memory

import (
	"context"
	"time"

	"github.com/vibe-gaming/auth-service/internal/domain"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.store.usernames[user.Username]; ok {
		return domain.ErrDuplicateEntry
	}
	if _, ok := r.store.users[user.ID]; ok {
		return domain.ErrDuplicateEntry
	}

	u := *user
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.store.users[u.ID] = u
	r.store.usernames[u.Username] = u.ID

	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	id, ok := r.store.usernames[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := r.store.users[id]

	return &u, nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	unlock, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return &u, nil
}

// Lock only checks existence: a transaction already owns the whole store.
func (r *userRepository) Lock(ctx context.Context, id uuid.UUID) error {
	_, err := r.GetOneByID(ctx, id)
	return err
}
