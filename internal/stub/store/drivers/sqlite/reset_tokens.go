package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
)

type resetTokensRepo struct {
	q querier
}

func (r *resetTokensRepo) CreateResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (token_hash, application_id, account_id, email, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.TokenHash, t.ApplicationID, t.AccountID, t.Email, toMillis(t.ExpiresAt), toMillis(t.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *resetTokensRepo) GetActiveResetToken(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.PasswordResetToken, error) {
	var (
		t                domain.PasswordResetToken
		expires, created int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT token_hash, application_id, account_id, email, expires_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = ? AND expires_at > ?`, hash, toMillis(now),
	).Scan(&t.TokenHash, &t.ApplicationID, &t.AccountID, &t.Email, &expires, &created)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	t.ExpiresAt, t.CreatedAt = fromMillis(expires), fromMillis(created)
	return t, nil
}

func (r *resetTokensRepo) DeleteResetToken(ctx context.Context, hash string) error {
	return requireRow(r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE token_hash = ?`, hash))
}

func (r *resetTokensRepo) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
