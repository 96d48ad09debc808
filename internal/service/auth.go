package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/auth-service/internal/domain"
	"github.com/vibe-gaming/auth-service/internal/repository"
	"github.com/vibe-gaming/auth-service/pkg/auth"
	"github.com/vibe-gaming/auth-service/pkg/logger"

	"go.uber.org/zap"
)

type Tokens struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}

type authService struct {
	transactor     repository.Transactor
	userRepository repository.Users
	verifier       CredentialVerifier
	refreshTokens  RefreshTokens
	tokenManager   auth.TokenManager
	throttle       LoginThrottle
}

func newAuthService(
	transactor repository.Transactor,
	userRepository repository.Users,
	verifier CredentialVerifier,
	refreshTokens RefreshTokens,
	tokenManager auth.TokenManager,
	throttle LoginThrottle,
) *authService {
	return &authService{
		transactor:     transactor,
		userRepository: userRepository,
		verifier:       verifier,
		refreshTokens:  refreshTokens,
		tokenManager:   tokenManager,
		throttle:       throttle,
	}
}

// Login verifies the credentials and starts a new session. Every earlier
// session of the user is dropped in the same transaction.
func (s *authService) Login(ctx context.Context, username, password string) (*Tokens, error) {
	if err := s.throttle.Check(ctx, username); err != nil {
		if isThrottled(err) {
			return nil, ErrTooManyAttempts
		}
		logger.Warn("login throttle check failed", zap.String("username", username), zap.Error(err))
	}

	if err := s.verifier.Verify(ctx, username, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if ferr := s.throttle.Fail(ctx, username); ferr != nil {
				logger.Warn("login throttle fail failed", zap.String("username", username), zap.Error(ferr))
			}
		}
		return nil, err
	}

	user, err := s.userRepository.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username failed: %w", err)
	}

	var tokens *Tokens
	err = s.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := s.userRepository.Lock(ctx, user.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user failed: %w", err)
		}

		if _, err := s.refreshTokens.RevokeAllForUser(ctx, user.ID); err != nil {
			return err
		}

		var err error
		tokens, err = s.createSession(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		logger.Warn("login throttle reset failed", zap.String("username", username), zap.Error(err))
	}

	logger.Info("user logged in", zap.String("user_id", user.ID.String()))

	return tokens, nil
}

// Refresh rotates the presented refresh token. A token is exchanged at most
// once: the loser of a concurrent exchange gets ErrTokenInactive.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	record, err := s.refreshTokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if !s.refreshTokens.IsActive(record) {
		return nil, ErrTokenInactive
	}

	var tokens *Tokens
	err = s.transactor.WithTx(ctx, func(ctx context.Context) error {
		// user first, then token row; login takes the same order
		if err := s.userRepository.Lock(ctx, record.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrTokenNotFound
			}
			return fmt.Errorf("lock user failed: %w", err)
		}

		locked, err := s.refreshTokens.LockByToken(ctx, refreshToken)
		if err != nil {
			return err
		}

		if err := s.refreshTokens.Consume(ctx, locked); err != nil {
			return err
		}

		user, err := s.userRepository.GetOneByID(ctx, locked.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrTokenNotFound
			}
			return fmt.Errorf("get user by id failed: %w", err)
		}

		tokens, err = s.createSession(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout revokes the token. Unknown tokens are accepted silently.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	record, err := s.refreshTokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return err
	}

	return s.refreshTokens.Revoke(ctx, record)
}

func (s *authService) LogoutAll(ctx context.Context, username string) error {
	user, err := s.userRepository.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user by username failed: %w", err)
	}

	return s.transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := s.userRepository.Lock(ctx, user.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("lock user failed: %w", err)
		}

		n, err := s.refreshTokens.RevokeAllForUser(ctx, user.ID)
		if err != nil {
			return err
		}

		logger.Info("user sessions revoked", zap.String("user_id", user.ID.String()), zap.Int64("count", n))

		return nil
	})
}

// createSession issues a refresh token and signs an access token. It must run
// inside a transaction so that a signing failure drops the new record.
func (s *authService) createSession(ctx context.Context, user *domain.User) (*Tokens, error) {
	var (
		res Tokens
		err error
	)

	record, err := s.refreshTokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	res.RefreshToken = record.Token
	res.RefreshTTL = record.ExpiresAt.Sub(record.CreatedAt)

	res.AccessToken, res.AccessTTL, err = s.tokenManager.NewJWT(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	return &res, nil
}
