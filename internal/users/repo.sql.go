package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users with their assigned role name.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, COALESCE(u.name, ''), u.is_active, COALESCE(ro.name, ''), u.created_at, u.updated_at
		FROM users u
		LEFT JOIN roles ro ON ro.id = u.role_id
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.IsActive, &user.RoleName, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// ListRoles returns all roles for assignment pickers.
func (r *Repository) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []RoleSummary
	for rows.Next() {
		var role RoleSummary
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// AssignRole sets a user's role. Users hold exactly one role.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1`, userID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
