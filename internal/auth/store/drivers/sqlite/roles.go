package sqlite

import (
	"context"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
)

type rolesRepo struct {
	q dbtx
}

func (r *rolesRepo) EnsureRole(ctx context.Context, role domain.Role) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO roles (name, description, created_at) VALUES (?, ?, ?)`,
		role.Name, role.Description, toMillis(role.CreatedAt),
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

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var (
			role    domain.Role
			created int64
		)
		if err := rows.Scan(&role.Name, &role.Description, &created); err != nil {
			return nil, err
		}
		role.CreatedAt = fromMillis(created)
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
