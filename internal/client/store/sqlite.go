package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/vanguard/internal/client/migrations"
	"github.com/dmitrijs2005/vanguard/internal/dbx"
)

// SQLiteBackend keeps one row per key in the app_store table. Every write
// bumps the row's version inside a transaction.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps an already migrated database.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the SQLite file at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrations: %w", ErrStorageUnavailable, err)
	}
	return NewSQLiteBackend(db), nil
}

func (b *SQLiteBackend) Load(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM app_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", key, err)
	}
	return json.RawMessage(value), true, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, key string, value json.RawMessage) error {
	err := dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO app_store (key, value, version) VALUES (?, ?, 1)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = app_store.version + 1
		`, key, string(value))
		return err
	})
	if err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM app_store WHERE key = ?`, key); err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Version returns how many times key has been written since it was created,
// or 0 when absent.
func (b *SQLiteBackend) Version(ctx context.Context, key string) (int64, error) {
	var v int64
	err := b.db.QueryRowContext(ctx, `SELECT version FROM app_store WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("get version", key, err)
	}
	return v, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
