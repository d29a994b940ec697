package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-admin/meridian/internal/shared"
)

type mockRepository struct {
	users []User
	roles []RoleSummary

	assigned map[int64]int64

	listUsersErr  error
	assignRoleErr error
}

func newMockRepo() *mockRepository {
	return &mockRepository{assigned: make(map[int64]int64)}
}

func (m *mockRepository) ListUsers(ctx context.Context) ([]User, error) {
	if m.listUsersErr != nil {
		return nil, m.listUsersErr
	}
	return m.users, nil
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	return m.roles, nil
}

func (m *mockRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	if m.assignRoleErr != nil {
		return m.assignRoleErr
	}
	m.assigned[userID] = roleID
	return nil
}

func TestListUsers(t *testing.T) {
	repo := newMockRepo()
	repo.users = []User{
		{ID: 1, Email: "admin@meridian.local", RoleName: "admin"},
		{ID: 2, Email: "new@meridian.local"},
	}
	svc := NewService(repo, nil)

	out, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Empty(t, out[1].RoleName, "unassigned users carry no role name")
}

func TestAssignRole(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.AssignRole(context.Background(), 1, 7, 3))
	assert.Equal(t, int64(3), repo.assigned[7])
}

func TestAssignRoleUnknownUser(t *testing.T) {
	repo := newMockRepo()
	repo.assignRoleErr = shared.ErrNotFound
	svc := NewService(repo, nil)

	err := svc.AssignRole(context.Background(), 1, 404, 3)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
