package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vibe-gaming/auth-service/internal/cache"
	"github.com/vibe-gaming/auth-service/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenManager struct {
	mock.Mock
}

func (m *mockTokenManager) NewJWT(identity auth.Identity) (string, time.Duration, error) {
	args := m.Called(identity)
	return args.String(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *mockTokenManager) Parse(accessToken string) (*auth.Identity, error) {
	args := m.Called(accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

type mockLoginThrottle struct {
	mock.Mock
}

func (m *mockLoginThrottle) Check(ctx context.Context, username string) error {
	return m.Called(username).Error(0)
}

func (m *mockLoginThrottle) Fail(ctx context.Context, username string) error {
	return m.Called(username).Error(0)
}

func (m *mockLoginThrottle) Reset(ctx context.Context, username string) error {
	return m.Called(username).Error(0)
}

func TestAuth_LoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	tokens, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, 15*time.Minute, tokens.AccessTTL)
	assert.Equal(t, 168*time.Hour, tokens.RefreshTTL)

	identity, err := env.tokens.Parse(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)

	rotated, err := env.services.Auth.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.EqualValues(t, 1, env.activeSessions(t, "admin"))
}

func TestAuth_LoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	_, err := env.services.Auth.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.services.Auth.Login(ctx, "ghost", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.EqualValues(t, 0, env.activeSessions(t, "admin"))
}

func TestAuth_RefreshRotationConsumesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	tokens, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	_, err = env.services.Auth.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	_, err = env.services.Auth.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInactive)
}

func TestAuth_LoginSupersedesPreviousSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	first, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	second, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = env.services.Auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInactive)
	assert.EqualValues(t, 1, env.activeSessions(t, "admin"))

	_, err = env.services.Auth.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuth_RefreshUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Auth.Refresh(context.Background(), "nonexistent-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = env.services.Auth.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestAuth_RefreshExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()
	user, err := env.repos.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)

	past := newRefreshTokenManager(env.repos.RefreshTokens, env.cfg.Auth.RefreshToken)
	past.now = func() time.Time {
		return time.Now().Add(-env.cfg.Auth.RefreshToken.TTL - time.Second)
	}
	rt, err := past.Issue(ctx, user.ID)
	require.NoError(t, err)

	_, err = env.services.Auth.Refresh(ctx, rt.Token)
	assert.ErrorIs(t, err, ErrTokenInactive)
}

func TestAuth_LogoutIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	tokens, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, env.services.Auth.Logout(ctx, tokens.RefreshToken))
	require.NoError(t, env.services.Auth.Logout(ctx, tokens.RefreshToken))
	require.NoError(t, env.services.Auth.Logout(ctx, "nonexistent-token"))

	_, err = env.services.Auth.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInactive)
	assert.EqualValues(t, 0, env.activeSessions(t, "admin"))
}

func TestAuth_LogoutAll(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	tokens, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, env.services.Auth.LogoutAll(ctx, "admin"))
	assert.EqualValues(t, 0, env.activeSessions(t, "admin"))

	_, err = env.services.Auth.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInactive)

	require.NoError(t, env.services.Auth.LogoutAll(ctx, "admin"))
	require.NoError(t, env.services.Auth.LogoutAll(ctx, "ghost"))
}

func TestAuth_SignerFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	tokens, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	signer := new(mockTokenManager)
	signer.On("NewJWT", mock.Anything).Return("", time.Duration(0), errors.New("signer down"))

	failing := newAuthService(
		env.repos.Transactor,
		env.repos.Users,
		newCredentialVerifier(env.repos.Users, env.hasher),
		newRefreshTokenManager(env.repos.RefreshTokens, env.cfg.Auth.RefreshToken),
		signer,
		noopLoginThrottle{},
	)

	_, err = failing.Login(ctx, "admin", "admin123")
	require.Error(t, err)
	_, err = failing.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
	signer.AssertNumberOfCalls(t, "NewJWT", 2)

	// neither the revoke-all of login nor the rotation of refresh survived
	assert.EqualValues(t, 1, env.activeSessions(t, "admin"))
	_, err = env.services.Auth.Refresh(ctx, tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuth_ConcurrentRefreshSameToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	tokens, err := env.services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		inactive  int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.services.Auth.Refresh(ctx, tokens.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrTokenInactive):
				inactive++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, inactive)
	assert.EqualValues(t, 1, env.activeSessions(t, "admin"))
}

func TestAuth_ConcurrentLoginsKeepSingleSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	const workers = 6
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.services.Auth.Login(ctx, "admin", "admin123")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, env.activeSessions(t, "admin"))
}

func TestAuth_LoginThrottle(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")
	ctx := context.Background()

	throttle := new(mockLoginThrottle)
	svc := newAuthService(
		env.repos.Transactor,
		env.repos.Users,
		newCredentialVerifier(env.repos.Users, env.hasher),
		newRefreshTokenManager(env.repos.RefreshTokens, env.cfg.Auth.RefreshToken),
		env.tokens,
		throttle,
	)

	throttle.On("Check", "admin").Return(nil).Twice()
	throttle.On("Fail", "admin").Return(nil).Once()
	throttle.On("Reset", "admin").Return(nil).Once()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	throttle.On("Check", "admin").Return(cache.ErrLoginAttemptsExceeded).Once()
	_, err = svc.Login(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	throttle.AssertExpectations(t)
}

func TestAuth_LoginThrottleUnavailableFailsOpen(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin", "admin123")

	throttle := new(mockLoginThrottle)
	throttle.On("Check", "admin").Return(cache.ErrRedisUnavailable)
	throttle.On("Reset", "admin").Return(cache.ErrRedisUnavailable)

	svc := newAuthService(
		env.repos.Transactor,
		env.repos.Users,
		newCredentialVerifier(env.repos.Users, env.hasher),
		newRefreshTokenManager(env.repos.RefreshTokens, env.cfg.Auth.RefreshToken),
		env.tokens,
		throttle,
	)

	_, err := svc.Login(context.Background(), "admin", "admin123")
	assert.NoError(t, err)
}
