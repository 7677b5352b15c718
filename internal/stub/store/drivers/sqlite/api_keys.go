package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
)

type apiKeysRepo struct {
	q querier
}

func (r *apiKeysRepo) GetAPIKeyByID(ctx context.Context, id string) (domain.APIKey, error) {
	var (
		k                domain.APIKey
		created, updated int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, account_id, secret_encrypted, status, created_at, updated_at
		FROM api_keys WHERE id = ?`, id,
	).Scan(&k.ID, &k.AccountID, &k.SecretEncrypted, &k.Status, &created, &updated)
	if err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	k.CreatedAt, k.UpdatedAt = fromMillis(created), fromMillis(updated)
	return k, nil
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO api_keys (id, account_id, secret_encrypted, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		k.ID, k.AccountID, k.SecretEncrypted, k.Status, toMillis(k.CreatedAt), toMillis(k.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *apiKeysRepo) UpdateAPIKeyStatus(ctx context.Context, id, status string) error {
	return requireRow(r.q.ExecContext(ctx,
		`UPDATE api_keys SET status = ?, updated_at = ? WHERE id = ?`,
		status, toMillis(time.Now()), id))
}
