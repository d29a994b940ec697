package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-admin/meridian/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}
	return s.tokens.Issue(ctx, user.ID)
}

// Logout revokes the presented bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
