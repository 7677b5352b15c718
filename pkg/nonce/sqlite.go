package nonce

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/nonce/migrations"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// migrationsTable is separate from the default so the nonce table can live
// in a database that runs its own migrations.
const migrationsTable = "idsite_nonce_migrations"

// SQLiteStore keeps nonces in a SQLite table. Expiry is stored as unix
// milliseconds; expired rows are ignored on read and removed by
// DeleteExpired.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens dsn and applies the nonce migrations.
func OpenSQLite(dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single writer avoids SQLITE_BUSY between concurrent claims.
	db.SetMaxOpenConns(1)

	s := NewSQLiteStore(db, opts...)
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("nonce: migrate: %w", err)
	}
	return s, nil
}

// NewSQLiteStore wraps an open database. Call ApplyMigrations before use.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	c := newConfig(opts)
	return &SQLiteStore{db: db, now: c.now}
}

// ApplyMigrations applies the embedded migrations.
func (s *SQLiteStore) ApplyMigrations() error {
	// 1. Create the SQLite migration driver
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return err
	}

	// 2. Create the iofs (embedded filesystem) source driver
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	// 3. Create the migrate instance and apply all up migrations
	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) HasNonce(ctx context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return false, ErrEmptyNonce
	}

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM idsite_nonces WHERE nonce = ? AND expires_at > ?`,
		nonce, s.now().UnixMilli(),
	).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

func (s *SQLiteStore) PutNonce(ctx context.Context, nonce string, ttl time.Duration) error {
	if err := validate(nonce, ttl); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO idsite_nonces (nonce, expires_at) VALUES (?, ?)
		ON CONFLICT (nonce) DO UPDATE SET expires_at = excluded.expires_at`,
		nonce, s.now().Add(ttl).UnixMilli(),
	)
	return err
}

// ClaimNonce inserts nonce, or takes over an expired row, in one statement.
// It reports false when a live row already exists.
func (s *SQLiteStore) ClaimNonce(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	if err := validate(nonce, ttl); err != nil {
		return false, err
	}

	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO idsite_nonces (nonce, expires_at) VALUES (?, ?)
		ON CONFLICT (nonce) DO UPDATE SET expires_at = excluded.expires_at
		WHERE idsite_nonces.expires_at <= ?`,
		nonce, now.Add(ttl).UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteExpired removes expired rows and returns how many were removed.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM idsite_nonces WHERE expires_at <= ?`,
		s.now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
