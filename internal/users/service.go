package users

import (
	"context"
	"strconv"

	"github.com/meridian-admin/meridian/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListRoles(ctx context.Context) ([]RoleSummary, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
}

// Service handles user administration logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	return s.repo.ListRoles(ctx)
}

// AssignRole replaces the user's role and records the change in the audit
// trail. In-flight requests keep their current authorization; the next
// request observes the new role.
func (s *Service) AssignRole(ctx context.Context, actorID, userID, roleID int64) error {
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "role.assign",
			Entity:   "user",
			EntityID: strconv.FormatInt(userID, 10),
			Meta:     map[string]any{"role_id": roleID},
		})
	}
	return nil
}
