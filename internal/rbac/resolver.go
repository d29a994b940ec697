package rbac

import (
	"errors"
	"log/slog"
)

// legacyCustomerPermissions is the fallback list for the customer role. It
// predates the migration of resource names from underscores to hyphens and is
// kept verbatim: route requirements across the system still reference both
// conventions. Do not unify without auditing every registered requirement.
var legacyCustomerPermissions = []string{
	"users:read_own",
	"users:write_own",
	"family_members:read_own",
	"family_members:write_own",
	"service_requests:read_own",
	"service_requests:write_own",
	"documents:read_own",
	"documents:write_own",
	"appointments:read_own",
	"appointments:write_own",
	"notifications:read_own",
	"courses:read_own",
	"courses:write_own",
}

// LegacyCustomerPermissions returns a copy of the customer fallback overlay.
func LegacyCustomerPermissions() []string {
	return append([]string(nil), legacyCustomerPermissions...)
}

// Resolver computes the effective permission set for a principal. It is a
// pure function of the role name and the raw permission cache; the only
// side effect is logging a malformed cache.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver constructs a Resolver. A nil logger disables cache warnings.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve merges the three permission sources in strict precedence order:
//
//  1. admin short-circuit: the admin role is granted everything outright so a
//     missing or corrupt cache can never lock administrators out;
//  2. cache expansion: grouped entries from the role's JSON cache expand to
//     resource:action strings, with an unparsable cache treated as empty;
//  3. legacy customer overlay: the fixed underscore-convention list is
//     unioned in for the customer role regardless of cache contents.
func (r *Resolver) Resolve(role RoleName, rawCache []byte) EffectiveSet {
	if role == RoleAdmin {
		return AllAccess()
	}

	set := NewEffectiveSet()
	groups, err := DecodeGroups(rawCache)
	if err != nil {
		if errors.Is(err, ErrMalformedCache) && r.logger != nil {
			r.logger.Warn("permission cache unreadable, treating as empty",
				slog.String("role", role.String()))
		}
	} else {
		for _, perm := range ExpandGroups(groups) {
			set.Add(perm)
		}
	}

	if role == RoleCustomer {
		for _, perm := range legacyCustomerPermissions {
			set.Add(perm)
		}
	}
	return set
}

// ResolveUser resolves against a full principal record. A nil role yields an
// empty set; the guard rejects that case before any permission comparison.
func (r *Resolver) ResolveUser(user *User) EffectiveSet {
	if user == nil || user.Role == nil {
		return NewEffectiveSet()
	}
	return r.Resolve(user.Role.Name, user.Role.RawPermissions)
}
