package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories are exposed as
// methods so a Tx-scoped Store hands out repositories bound to the same
// transaction.
type Store interface {
	Applications() Applications
	Directories() Directories
	Accounts() Accounts
	APIKeys() APIKeys
	ResetTokens() ResetTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Applications interface {
	GetApplicationByID(ctx context.Context, id string) (domain.Application, error)
	CreateApplication(ctx context.Context, a domain.Application) error

	// IsEmpty reports whether no application exists yet (bootstrap guard).
	IsEmpty(ctx context.Context) (bool, error)
}

type Directories interface {
	GetDirectoryByID(ctx context.Context, id string) (domain.Directory, error)
	CreateDirectory(ctx context.Context, d domain.Directory) error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByLogin matches login against username or email within a
	// directory.
	GetAccountByLogin(ctx context.Context, directoryID, login string) (domain.Account, error)

	GetAccountByEmail(ctx context.Context, directoryID, email string) (domain.Account, error)

	// CreateAccount returns ErrAlreadyExists when the username or email is
	// taken within the directory.
	CreateAccount(ctx context.Context, a domain.Account) error

	UpdateAccountStatus(ctx context.Context, id, status string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

type APIKeys interface {
	GetAPIKeyByID(ctx context.Context, id string) (domain.APIKey, error)
	CreateAPIKey(ctx context.Context, k domain.APIKey) error
	UpdateAPIKeyStatus(ctx context.Context, id, status string) error
}

type ResetTokens interface {
	CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error

	// GetActiveResetToken returns a token that has not expired at now.
	GetActiveResetToken(ctx context.Context, hash string, now time.Time) (domain.PasswordResetToken, error)

	DeleteResetToken(ctx context.Context, hash string) error

	// DeleteExpiredResetTokens is housekeeping. It returns the number of
	// rows removed.
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
