package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/domain"
	"github.com/vibe-gaming/auth-service/internal/service"
	"github.com/vibe-gaming/auth-service/pkg/auth"
	"github.com/vibe-gaming/auth-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (*service.Tokens, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Tokens), args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, refreshToken string) (*service.Tokens, error) {
	args := m.Called(refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Tokens), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(refreshToken).Error(0)
}

func (m *mockAuth) LogoutAll(ctx context.Context, username string) error {
	return m.Called(username).Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	args := m.Called(username, password)
	return args.Bool(0), args.Error(1)
}

type testServer struct {
	router       *gin.Engine
	auth         *mockAuth
	users        *mockUsers
	tokenManager *auth.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.RegisterGinValidator()

	cfg := &config.Config{}
	cfg.Auth.JWT = config.JWTConfig{
		AccessTokenTTL: 15 * time.Minute,
		SigningKey:     "test-signing-key",
		Issuer:         "auth-service",
	}
	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	require.NoError(t, err)

	ts := &testServer{
		router:       gin.New(),
		auth:         new(mockAuth),
		users:        new(mockUsers),
		tokenManager: tokenManager,
	}
	h := NewHandler(&service.Services{Auth: ts.auth, Users: ts.users}, tokenManager, cfg)
	h.Init(ts.router.Group("/api"))

	return ts
}

func (ts *testServer) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) bearer(t *testing.T, identity auth.Identity) string {
	t.Helper()
	token, _, err := ts.tokenManager.NewJWT(identity)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestServiceErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, InvalidCredentialsCode},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound, UserNotFoundCode},
		{"token not found", service.ErrTokenNotFound, http.StatusUnauthorized, TokenNotFoundCode},
		{"token inactive", service.ErrTokenInactive, http.StatusUnauthorized, TokenInactiveCode},
		{"too many attempts", service.ErrTooManyAttempts, http.StatusTooManyRequests, TooManyAttemptsCode},
		{"internal", errors.New("db is down"), http.StatusInternalServerError, UnknownErrorCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.auth.On("Refresh", "token").Return(nil, tt.err)

			w := ts.do(http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"token"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t,
				`{"error_code":`+strconv.Itoa(tt.code)+`,"error_message":"`+string(getErrorStruct(ErrorCode(tt.code)).ErrorMessage)+`"}`,
				w.Body.String(),
			)
		})
	}
}
