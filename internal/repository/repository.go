package repository

import (
	"context"
	"time"

	"github.com/vibe-gaming/auth-service/internal/db"
	"github.com/vibe-gaming/auth-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Transactor    Transactor
	Users         Users
	RefreshTokens RefreshTokens
}

func NewRepositories(dbConn *sqlx.DB) *Repositories {
	return &Repositories{
		Transactor:    db.NewTransactor(dbConn),
		Users:         newUserRepository(dbConn),
		RefreshTokens: newRefreshTokenRepository(dbConn),
	}
}

// Transactor runs fn atomically. Repository calls made with the context
// passed to fn take part in the transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Lock holds an exclusive lock on the user row until the surrounding
	// transaction ends.
	Lock(ctx context.Context, id uuid.UUID) error
}

type RefreshTokens interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*domain.RefreshToken, error)
	// Revoke flips revoked from false to true. It returns
	// domain.ErrNoRowsAffected when the record is missing or already revoked.
	Revoke(ctx context.Context, id uuid.UUID) error
	// RevokeAllByUser revokes every active record of the user and reports
	// how many changed.
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}
