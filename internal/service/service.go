package service

import (
	"context"

	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/domain"
	"github.com/vibe-gaming/auth-service/internal/repository"
	"github.com/vibe-gaming/auth-service/pkg/auth"
	"github.com/vibe-gaming/auth-service/pkg/hash"

	"github.com/google/uuid"
)

type Services struct {
	Auth          Auth
	Users         Users
	RefreshTokens RefreshTokens
}

type Deps struct {
	Config        *config.Config
	Hasher        hash.PasswordHasher
	TokenManager  auth.TokenManager
	LoginThrottle LoginThrottle
	Repos         *repository.Repositories
}

func NewServices(deps Deps) *Services {
	throttle := deps.LoginThrottle
	if throttle == nil {
		throttle = noopLoginThrottle{}
	}

	refreshTokens := newRefreshTokenManager(deps.Repos.RefreshTokens, deps.Config.Auth.RefreshToken)
	verifier := newCredentialVerifier(deps.Repos.Users, deps.Hasher)

	return &Services{
		Auth: newAuthService(
			deps.Repos.Transactor,
			deps.Repos.Users,
			verifier,
			refreshTokens,
			deps.TokenManager,
			throttle,
		),
		Users:         newUserService(deps.Repos.Users, deps.Hasher),
		RefreshTokens: refreshTokens,
	}
}

type Auth interface {
	Login(ctx context.Context, username, password string) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, username string) error
}

type Users interface {
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	EnsureUser(ctx context.Context, username, password string) (bool, error)
}

// RefreshTokens owns every refresh token record mutation.
type RefreshTokens interface {
	Issue(ctx context.Context, userID uuid.UUID) (*domain.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	LockByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	IsActive(token *domain.RefreshToken) bool
	Revoke(ctx context.Context, token *domain.RefreshToken) error
	Consume(ctx context.Context, token *domain.RefreshToken) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}
