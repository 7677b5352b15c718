package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
)

const accountColumns = `id, directory_id, username, email, given_name, surname,
	password_hash, status, created_at, updated_at`

type accountsRepo struct {
	q querier
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a                domain.Account
		created, updated int64
	)
	err := row.Scan(
		&a.ID, &a.DirectoryID, &a.Username, &a.Email, &a.GivenName, &a.Surname,
		&a.PasswordHash, &a.Status, &created, &updated,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.CreatedAt, a.UpdatedAt = fromMillis(created), fromMillis(updated)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return scanAccount(r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *accountsRepo) GetAccountByLogin(ctx context.Context, directoryID, login string) (domain.Account, error) {
	return scanAccount(r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE directory_id = ? AND (username = ? OR email = ? COLLATE NOCASE)
		 ORDER BY username = ? DESC LIMIT 1`,
		directoryID, login, login, login))
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, directoryID, email string) (domain.Account, error) {
	return scanAccount(r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE directory_id = ? AND email = ? COLLATE NOCASE`,
		directoryID, email))
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DirectoryID, a.Username, a.Email, a.GivenName, a.Surname,
		a.PasswordHash, a.Status, toMillis(a.CreatedAt), toMillis(a.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdateAccountStatus(ctx context.Context, id, status string) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`,
		status, toMillis(time.Now()), id))
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, toMillis(time.Now()), id))
}
