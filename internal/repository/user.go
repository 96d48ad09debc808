package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibe-gaming/auth-service/internal/db"
	"github.com/vibe-gaming/auth-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
	INSERT INTO user (id, username, password_hash)
	VALUES (uuid_to_bin(?), ?, ?)
	`

	result, err := db.Conn(ctx, r.db).ExecContext(ctx, query, user.ID, user.Username, user.PasswordHash)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
	SELECT id, username, password_hash, created_at, updated_at FROM user WHERE username = ?
	`
	var user domain.User
	if err := sqlx.GetContext(ctx, db.Conn(ctx, r.db), &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by username failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
	SELECT id, username, password_hash, created_at, updated_at FROM user WHERE id = uuid_to_bin(?)
	`
	var user domain.User
	if err := sqlx.GetContext(ctx, db.Conn(ctx, r.db), &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by id failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Lock(ctx context.Context, id uuid.UUID) error {
	const query = `
	SELECT id FROM user WHERE id = uuid_to_bin(?) FOR UPDATE
	`
	var locked uuid.UUID
	if err := sqlx.GetContext(ctx, db.Conn(ctx, r.db), &locked, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock user failed: %w", err)
	}

	return nil
}
