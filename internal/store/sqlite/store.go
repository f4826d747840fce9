// Package sqlite stores plan documents in the workspace SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"successplan/internal/db"
	"successplan/internal/migrate"
	"successplan/internal/store/core"
)

var _ core.Backend = (*Store)(nil)

type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

// Open opens the workspace database and applies pending migrations.
func Open(ctx context.Context, workspace string) (*Store, error) {
	conn, err := db.Open(ctx, db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if _, err := migrate.Migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{DB: conn, Now: time.Now}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, `SELECT payload FROM documents WHERE key=?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO documents(key,payload,updated_at) VALUES (?,?,?)
ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		key, string(value), s.now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
