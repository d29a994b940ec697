package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-admin/meridian/internal/shared"
)

type mockRepository struct {
	users map[string]*User
	err   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]*User)}
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockRepository) addUser(t *testing.T, email, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{
		ID:           int64(len(m.users) + 1),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
	}
	m.users[email] = user
	return user
}

func TestAuthenticate(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "ops@meridian.local", "operator123", true)
	svc := NewService(repo, nil)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "ops@meridian.local", "operator123")
	require.NoError(t, err)
	assert.Equal(t, "ops@meridian.local", user.Email)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "ops@meridian.local", "operator123", true)
	svc := NewService(repo, nil)

	_, err := svc.Authenticate(context.Background(), "ops@meridian.local", "wrong-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Authenticate(context.Background(), "nobody@meridian.local", "whatever1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "gone@meridian.local", "password1", false)
	svc := NewService(repo, nil)

	_, err := svc.Authenticate(context.Background(), "gone@meridian.local", "password1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newMockRepository()
	user := repo.addUser(t, "ops@meridian.local", "operator123", true)

	tokens, _ := newTestTokenManager(t, time.Hour)
	svc := NewService(repo, tokens)
	ctx := context.Background()

	token, err := svc.Login(ctx, "ops@meridian.local", "operator123")
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)
	assert.Equal(t, user.ID, token.UserID)

	userID, err := tokens.Lookup(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogoutRevokesToken(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "ops@meridian.local", "operator123", true)

	tokens, _ := newTestTokenManager(t, time.Hour)
	svc := NewService(repo, tokens)
	ctx := context.Background()

	token, err := svc.Login(ctx, "ops@meridian.local", "operator123")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, token.Value))

	_, err = tokens.Lookup(ctx, token.Value)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
