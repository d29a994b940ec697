package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Store is the persistence boundary for roles, permissions and the
// denormalized role cache. The cache accessors keep the JSON serialization an
// implementation detail behind the codec; callers never parse it themselves.
type Store interface {
	EnsurePermission(ctx context.Context, resource, action, description string) (Permission, error)
	EnsureRoleLink(ctx context.Context, roleID, permissionID int64) error
	FindRoleByName(ctx context.Context, name RoleName) (Role, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetEffectivePermissionsRaw(ctx context.Context, roleID int64) ([]byte, error)
	SetEffectivePermissionsRaw(ctx context.Context, roleID int64, raw []byte) error
	FindUserWithRole(ctx context.Context, userID int64) (*User, error)
}

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL backed store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsurePermission looks a permission up by its computed name and creates it
// when absent. An existing row is returned untouched: the first seeded
// description wins, a changed permission is a new row.
func (s *PGStore) EnsurePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	name := PermissionName(resource, action)
	perm, err := s.findPermissionByName(ctx, name)
	if err == nil {
		return perm, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Permission{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, resource, action, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, name, resource, action, description)
	var id int64
	if err := row.Scan(&id); err != nil {
		// A concurrent seeder may have inserted the same name; fall back to
		// the winning row.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return s.findPermissionByName(ctx, name)
		}
		return Permission{}, err
	}
	return Permission{ID: id, Name: name, Resource: resource, Action: action, Description: description}, nil
}

func (s *PGStore) findPermissionByName(ctx context.Context, name string) (Permission, error) {
	var perm Permission
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, resource, action, description
		FROM permissions WHERE name = $1`, name).
		Scan(&perm.ID, &perm.Name, &perm.Resource, &perm.Action, &perm.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, ErrNotFound
		}
		return Permission{}, err
	}
	return perm, nil
}

// EnsureRoleLink creates the role-permission join row when absent. At most
// one row exists per (roleID, permissionID) pair.
func (s *PGStore) EnsureRoleLink(ctx context.Context, roleID, permissionID int64) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_permissions WHERE role_id = $1 AND permission_id = $2
		)`, roleID, permissionID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)`, roleID, permissionID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil
	}
	return err
}

// FindRoleByName fetches a role including its raw permission cache.
func (s *PGStore) FindRoleByName(ctx context.Context, name RoleName) (Role, error) {
	var role Role
	var rawName string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, permissions, created_at, updated_at
		FROM roles WHERE name = $1`, name.String()).
		Scan(&role.ID, &rawName, &role.Description, &role.RawPermissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	role.Name = ParseRoleName(rawName)
	return role, nil
}

// RolePermissions returns the flat permissions linked to a role.
func (s *PGStore) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, p.resource, p.action, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Resource, &perm.Action, &perm.Description); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// ListPermissions returns every permission row ordered by name.
func (s *PGStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, resource, action, description
		FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Resource, &perm.Action, &perm.Description); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// GetEffectivePermissionsRaw reads the denormalized cache for a role.
func (s *PGStore) GetEffectivePermissionsRaw(ctx context.Context, roleID int64) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT permissions FROM roles WHERE id = $1`, roleID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

// SetEffectivePermissionsRaw overwrites the denormalized cache for a role.
func (s *PGStore) SetEffectivePermissionsRaw(ctx context.Context, roleID int64, raw []byte) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE roles SET permissions = $2, updated_at = NOW() WHERE id = $1`, roleID, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindUserWithRole loads a principal together with its role relation, fresh
// from storage. The guard calls this on every authorization check so role
// changes apply without reissuing credentials.
func (s *PGStore) FindUserWithRole(ctx context.Context, userID int64) (*User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.email, r.id, r.name, r.description, r.permissions, r.created_at, r.updated_at
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	var (
		user     User
		roleID   *int64
		roleName *string
		roleDesc *string
		raw      []byte
		created  *time.Time
		updated  *time.Time
	)
	if err := rows.Scan(&user.ID, &user.Email, &roleID, &roleName, &roleDesc, &raw, &created, &updated); err != nil {
		return nil, err
	}
	if roleID != nil && roleName != nil {
		role := &Role{ID: *roleID, Name: ParseRoleName(*roleName), RawPermissions: raw}
		if roleDesc != nil {
			role.Description = *roleDesc
		}
		if created != nil {
			role.CreatedAt = *created
		}
		if updated != nil {
			role.UpdatedAt = *updated
		}
		user.Role = role
	}
	return &user, nil
}

var _ Store = (*PGStore)(nil)
