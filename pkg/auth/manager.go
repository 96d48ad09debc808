package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/auth-service/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidClaims = errors.New("invalid token claims")

// Identity is the verified principal an access token is issued for.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

// Claims are the access token claims. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenManager provides logic for JWT access tokens generation and parsing.
type TokenManager interface {
	NewJWT(identity Identity) (string, time.Duration, error)
	Parse(accessToken string) (*Identity, error)
}

type Manager struct {
	signingKey     []byte
	issuer         string
	accessTokenTTL time.Duration
	now            func() time.Time
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if cfg.AccessTokenTTL <= 0 {
		return nil, errors.New("empty access token ttl")
	}

	return &Manager{
		signingKey:     []byte(cfg.SigningKey),
		issuer:         cfg.Issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
		now:            time.Now,
	}, nil
}

func (m *Manager) NewJWT(identity Identity) (string, time.Duration, error) {
	if identity.Username == "" || identity.UserID == uuid.Nil {
		return "", 0, errors.New("empty identity")
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenTTL)),
			ID:        uuid.NewString(),
		},
		UserID: identity.UserID.String(),
	})

	accessToken, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", 0, fmt.Errorf("sign jwt failed: %w", err)
	}

	return accessToken, m.accessTokenTTL, nil
}

func (m *Manager) Parse(accessToken string) (*Identity, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	_, err := jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return m.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || claims.Subject == "" {
		return nil, ErrInvalidClaims
	}

	return &Identity{UserID: userID, Username: claims.Subject}, nil
}
