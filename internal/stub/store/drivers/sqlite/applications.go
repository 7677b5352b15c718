package sqlite

import (
	"context"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
)

type applicationsRepo struct {
	q querier
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id string) (domain.Application, error) {
	var (
		a                domain.Application
		created, updated int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, description, status, directory_id, created_at, updated_at
		FROM applications WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Description, &a.Status, &a.DirectoryID, &created, &updated)
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	a.CreatedAt, a.UpdatedAt = fromMillis(created), fromMillis(updated)
	return a, nil
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.Application) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO applications (id, name, description, status, directory_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Description, a.Status, a.DirectoryID, toMillis(a.CreatedAt), toMillis(a.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *applicationsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

type directoriesRepo struct {
	q querier
}

func (r *directoriesRepo) GetDirectoryByID(ctx context.Context, id string) (domain.Directory, error) {
	var (
		d       domain.Directory
		created int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, description, status, created_at
		FROM directories WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.Status, &created)
	if err != nil {
		return domain.Directory{}, mapNotFound(err)
	}
	d.CreatedAt = fromMillis(created)
	return d, nil
}

func (r *directoriesRepo) CreateDirectory(ctx context.Context, d domain.Directory) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO directories (id, name, description, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Description, d.Status, toMillis(d.CreatedAt),
	)
	return mapConstraint(err)
}
