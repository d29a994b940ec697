package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Seeder applies the permission catalog to storage. Seeding is idempotent:
// permissions dedupe by name, links dedupe by (role, permission), and the
// role cache is rewritten from the flat rows on every run.
type Seeder struct {
	store  Store
	logger *slog.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(store Store, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// Seed provisions the full catalog. A role missing from storage is skipped
// with a warning rather than failing the run: environments are provisioned
// incrementally and the remaining roles must still seed.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, name := range []RoleName{RoleAdmin, RoleCustomer, RoleOperator, RoleFinance} {
		if err := s.SeedRole(ctx, name, Catalog()[name]); err != nil {
			return err
		}
	}
	return nil
}

// SeedRole ensures every catalog entry for one role exists, is linked, and is
// reflected in the role's grouped permission cache.
func (s *Seeder) SeedRole(ctx context.Context, name RoleName, entries []CatalogEntry) error {
	role, err := s.store.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if s.logger != nil {
				s.logger.Warn("role not provisioned, skipping catalog",
					slog.String("role", name.String()))
			}
			return nil
		}
		return fmt.Errorf("rbac: find role %s: %w", name, err)
	}

	for _, entry := range entries {
		perm, err := s.store.EnsurePermission(ctx, entry.Resource, entry.Action, entry.Description)
		if err != nil {
			return fmt.Errorf("rbac: ensure permission %s: %w", PermissionName(entry.Resource, entry.Action), err)
		}
		if err := s.store.EnsureRoleLink(ctx, role.ID, perm.ID); err != nil {
			return fmt.Errorf("rbac: link %s to %s: %w", perm.Name, name, err)
		}
	}

	return s.RefreshRoleCache(ctx, role.ID)
}

// RefreshAllRoleCaches rebuilds the cache of every provisioned role from the
// flat rows. Used by the scheduled worker task to converge caches after
// out-of-band changes to role_permissions. Roles refresh concurrently since
// each cache row is independent.
func (s *Seeder) RefreshAllRoleCaches(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range []RoleName{RoleAdmin, RoleCustomer, RoleOperator, RoleFinance} {
		g.Go(func() error {
			role, err := s.store.FindRoleByName(gctx, name)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil
				}
				return fmt.Errorf("rbac: find role %s: %w", name, err)
			}
			return s.RefreshRoleCache(gctx, role.ID)
		})
	}
	return g.Wait()
}

// RefreshRoleCache regroups the role's flat permission rows by resource and
// overwrites the denormalized JSON cache. The grouped shape is preserved even
// though storage keeps one row per action.
func (s *Seeder) RefreshRoleCache(ctx context.Context, roleID int64) error {
	perms, err := s.store.RolePermissions(ctx, roleID)
	if err != nil {
		return fmt.Errorf("rbac: list role permissions: %w", err)
	}
	entries := make([]CatalogEntry, 0, len(perms))
	for _, perm := range perms {
		entries = append(entries, CatalogEntry{
			Resource:    perm.Resource,
			Action:      perm.Action,
			Description: perm.Description,
		})
	}
	raw, err := EncodeGroups(GroupCatalog(entries))
	if err != nil {
		return fmt.Errorf("rbac: encode cache: %w", err)
	}
	if err := s.store.SetEffectivePermissionsRaw(ctx, roleID, raw); err != nil {
		return fmt.Errorf("rbac: write cache: %w", err)
	}
	return nil
}
