package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibe-gaming/auth-service/internal/db/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, dbConn *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("goose set dialect failed: %w", err)
	}

	if err := gooseUpContext(ctx, dbConn.DB, "."); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}
