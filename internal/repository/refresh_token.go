package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/auth-service/internal/db"
	"github.com/vibe-gaming/auth-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type refreshTokenRepository struct {
	db *sqlx.DB
}

func newRefreshTokenRepository(db *sqlx.DB) *refreshTokenRepository {
	return &refreshTokenRepository{
		db: db,
	}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	const op = "repository.refreshToken.Create"

	const query = `
	INSERT INTO refresh_token (id, user_id, token, expires_at, revoked, created_at)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :token, :expires_at, :revoked, :created_at)
	`

	res, err := sqlx.NamedExecContext(ctx, db.Conn(ctx, r.db), query, token)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert refresh token failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	const query = `
	SELECT id, user_id, token, expires_at, revoked, created_at
	FROM refresh_token
	WHERE token = ?
	`

	return r.get(ctx, "repository.refreshToken.GetByToken", query, token)
}

func (r *refreshTokenRepository) GetByTokenForUpdate(ctx context.Context, token string) (*domain.RefreshToken, error) {
	const query = `
	SELECT id, user_id, token, expires_at, revoked, created_at
	FROM refresh_token
	WHERE token = ?
	FOR UPDATE
	`

	return r.get(ctx, "repository.refreshToken.GetByTokenForUpdate", query, token)
}

func (r *refreshTokenRepository) get(ctx context.Context, op string, query string, args ...any) (*domain.RefreshToken, error) {
	var refreshToken domain.RefreshToken
	if err := sqlx.GetContext(ctx, db.Conn(ctx, r.db), &refreshToken, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select refresh token failed: %w", op, err)
	}

	return &refreshToken, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	const op = "repository.refreshToken.Revoke"

	const query = `
	UPDATE refresh_token SET revoked = 1 WHERE id = uuid_to_bin(?) AND revoked = 0
	`

	res, err := db.Conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: update refresh token failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *refreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "repository.refreshToken.RevokeAllByUser"

	const query = `
	UPDATE refresh_token SET revoked = 1 WHERE user_id = uuid_to_bin(?) AND revoked = 0
	`

	res, err := db.Conn(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: update refresh tokens failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `
	DELETE FROM refresh_token WHERE expires_at <= ?
	`

	return r.delete(ctx, "repository.refreshToken.DeleteExpired", query, now)
}

func (r *refreshTokenRepository) delete(ctx context.Context, op string, query string, args ...any) (int64, error) {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: delete refresh tokens failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}

func (r *refreshTokenRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	const query = `
	SELECT COUNT(*) FROM refresh_token WHERE user_id = uuid_to_bin(?) AND revoked = 0 AND expires_at > ?
	`

	var count int64
	if err := sqlx.GetContext(ctx, db.Conn(ctx, r.db), &count, query, userID, now); err != nil {
		return 0, fmt.Errorf("count active refresh tokens failed: %w", err)
	}

	return count, nil
}
