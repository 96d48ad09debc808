package service

import (
	"context"
	"testing"
	"time"

	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/repository"
	"github.com/vibe-gaming/auth-service/internal/repository/memory"
	"github.com/vibe-gaming/auth-service/pkg/auth"
	"github.com/vibe-gaming/auth-service/pkg/hash"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	cfg      *config.Config
	repos    *repository.Repositories
	hasher   hash.PasswordHasher
	tokens   *auth.Manager
	services *Services
}

func testConfig() *config.Config {
	return &config.Config{
		Env: "local",
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				AccessTokenTTL: 15 * time.Minute,
				SigningKey:     "test-signing-key",
				Issuer:         "auth-service",
			},
			RefreshToken: config.RefreshTokenConfig{
				TTL:           168 * time.Hour,
				Bytes:         32,
				IssueAttempts: 3,
			},
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	tokens, err := auth.NewManager(cfg.Auth.JWT)
	require.NoError(t, err)

	env := &testEnv{
		cfg:    cfg,
		repos:  memory.NewRepositories(memory.NewStore()),
		hasher: hash.NewBcryptHasher(bcrypt.MinCost),
		tokens: tokens,
	}
	env.services = NewServices(Deps{
		Config:       cfg,
		Hasher:       env.hasher,
		TokenManager: tokens,
		Repos:        env.repos,
	})

	return env
}

func (e *testEnv) seedUser(t *testing.T, username, password string) {
	t.Helper()
	created, err := e.services.Users.EnsureUser(context.Background(), username, password)
	require.NoError(t, err)
	require.True(t, created)
}

func (e *testEnv) activeSessions(t *testing.T, username string) int64 {
	t.Helper()
	ctx := context.Background()
	user, err := e.repos.Users.GetByUsername(ctx, username)
	require.NoError(t, err)
	n, err := e.repos.RefreshTokens.CountActiveByUser(ctx, user.ID, time.Now())
	require.NoError(t, err)
	return n
}
