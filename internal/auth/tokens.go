package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound indicates an unknown or expired bearer token.
var ErrTokenNotFound = errors.New("auth: token not found")

// TokenManager issues and resolves opaque bearer tokens backed by Redis.
// Tokens carry only the user id; the authorization layer re-fetches the role
// from storage on every request, so nothing cached here can go stale except
// the login itself.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	return &TokenManager{client: client, ttl: ttl}
}

// Issue creates a fresh token for the user.
func (m *TokenManager) Issue(ctx context.Context, userID int64) (Token, error) {
	value := uuid.NewString()
	if err := m.client.Set(ctx, m.key(value), strconv.FormatInt(userID, 10), m.ttl).Err(); err != nil {
		return Token{}, err
	}
	return Token{Value: value, UserID: userID, ExpiresAt: time.Now().Add(m.ttl)}, nil
}

// Lookup resolves a token to its user id.
func (m *TokenManager) Lookup(ctx context.Context, value string) (int64, error) {
	raw, err := m.client.Get(ctx, m.key(value)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrTokenNotFound
	}
	return id, nil
}

// Revoke deletes a token. Revoking an unknown token is not an error.
func (m *TokenManager) Revoke(ctx context.Context, value string) error {
	err := m.client.Del(ctx, m.key(value)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// TTL exposes the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) key(value string) string {
	return "authtoken:" + value
}
