package rbac

import (
	"context"
	"sync"
)

// memStore is an in-memory Store for tests, with error injection hooks in the
// style of the service-layer mock repositories.
type memStore struct {
	mu sync.Mutex

	roles       map[int64]*Role
	rolesByName map[RoleName]int64
	nextRoleID  int64

	perms       map[int64]Permission
	permsByName map[string]int64
	nextPermID  int64

	links map[[2]int64]struct{}

	users map[int64]*User

	findUserErr error
	ensureErr   error
}

func newMemStore() *memStore {
	return &memStore{
		roles:       make(map[int64]*Role),
		rolesByName: make(map[RoleName]int64),
		nextRoleID:  1,
		perms:       make(map[int64]Permission),
		permsByName: make(map[string]int64),
		nextPermID:  1,
		links:       make(map[[2]int64]struct{}),
		users:       make(map[int64]*User),
	}
}

func (m *memStore) addRole(name RoleName) *Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	role := &Role{ID: m.nextRoleID, Name: name}
	m.nextRoleID++
	m.roles[role.ID] = role
	m.rolesByName[name] = role.ID
	return role
}

func (m *memStore) addUser(id int64, role *Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &User{ID: id, Role: role}
}

func (m *memStore) EnsurePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	if m.ensureErr != nil {
		return Permission{}, m.ensureErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := PermissionName(resource, action)
	if id, ok := m.permsByName[name]; ok {
		return m.perms[id], nil
	}
	perm := Permission{ID: m.nextPermID, Name: name, Resource: resource, Action: action, Description: description}
	m.nextPermID++
	m.perms[perm.ID] = perm
	m.permsByName[name] = perm.ID
	return perm, nil
}

func (m *memStore) EnsureRoleLink(ctx context.Context, roleID, permissionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[[2]int64{roleID, permissionID}] = struct{}{}
	return nil
}

func (m *memStore) FindRoleByName(ctx context.Context, name RoleName) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.rolesByName[name]
	if !ok {
		return Role{}, ErrNotFound
	}
	return *m.roles[id], nil
}

func (m *memStore) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Permission
	for id := int64(1); id < m.nextPermID; id++ {
		if _, ok := m.links[[2]int64{roleID, id}]; ok {
			out = append(out, m.perms[id])
		}
	}
	return out, nil
}

func (m *memStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Permission
	for id := int64(1); id < m.nextPermID; id++ {
		out = append(out, m.perms[id])
	}
	return out, nil
}

func (m *memStore) GetEffectivePermissionsRaw(ctx context.Context, roleID int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[roleID]
	if !ok {
		return nil, ErrNotFound
	}
	return role.RawPermissions, nil
}

func (m *memStore) SetEffectivePermissionsRaw(ctx context.Context, roleID int64, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[roleID]
	if !ok {
		return ErrNotFound
	}
	role.RawPermissions = raw
	return nil
}

func (m *memStore) FindUserWithRole(ctx context.Context, userID int64) (*User, error) {
	if m.findUserErr != nil {
		return nil, m.findUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

var _ Store = (*memStore)(nil)
