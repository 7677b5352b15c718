package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/idkit/internal/stub/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op: the connection is held by the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Applications() store.Applications { return &applicationsRepo{q: t.tx} }
func (t *txStore) Directories() store.Directories   { return &directoriesRepo{q: t.tx} }
func (t *txStore) Accounts() store.Accounts         { return &accountsRepo{q: t.tx} }
func (t *txStore) APIKeys() store.APIKeys           { return &apiKeysRepo{q: t.tx} }
func (t *txStore) ResetTokens() store.ResetTokens   { return &resetTokensRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx
