// Package memory provides in-process implementations of the repository
// interfaces. Transactions are serialized on a single mutex and roll back by
// restoring a snapshot taken when they begin.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/vibe-gaming/auth-service/internal/domain"
	"github.com/vibe-gaming/auth-service/internal/repository"

	"github.com/google/uuid"
)

type txKey struct {
	store *Store
}

type Store struct {
	mu sync.Mutex

	users      map[uuid.UUID]domain.User
	usernames  map[string]uuid.UUID
	tokens     map[uuid.UUID]domain.RefreshToken
	tokenIndex map[string]uuid.UUID
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]domain.User),
		usernames:  make(map[string]uuid.UUID),
		tokens:     make(map[uuid.UUID]domain.RefreshToken),
		tokenIndex: make(map[string]uuid.UUID),
	}
}

func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		Transactor:    s,
		Users:         &userRepository{store: s},
		RefreshTokens: &refreshTokenRepository{store: s},
	}
}

type snapshot struct {
	users      map[uuid.UUID]domain.User
	usernames  map[string]uuid.UUID
	tokens     map[uuid.UUID]domain.RefreshToken
	tokenIndex map[string]uuid.UUID
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		users:      maps.Clone(s.users),
		usernames:  maps.Clone(s.usernames),
		tokens:     maps.Clone(s.tokens),
		tokenIndex: maps.Clone(s.tokenIndex),
	}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.usernames = snap.usernames
	s.tokens = snap.tokens
	s.tokenIndex = snap.tokenIndex
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{store: s}) != nil
}

// acquire locks the store unless ctx already runs inside one of its
// transactions.
func (s *Store) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.inTx(ctx) {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{store: s}, true))
	return err
}
