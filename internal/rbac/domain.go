package rbac

import (
	"sort"
	"time"
)

// Role represents a high-level permission grouping. RawPermissions holds the
// denormalized JSON cache of grouped permissions maintained by the seeder.
type Role struct {
	ID             int64
	Name           RoleName
	Description    string
	RawPermissions []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Permission represents an atomic capability. Name is always Resource + ":" + Action.
type Permission struct {
	ID          int64
	Name        string
	Resource    string
	Action      string
	Description string
}

// RolePermission ties a permission to a role.
type RolePermission struct {
	ID           int64
	RoleID       int64
	PermissionID int64
}

// PermissionGroup is the grouped cache shape stored on the role record:
// one entry covers every action available on a single resource.
type PermissionGroup struct {
	Resource    string   `json:"resource"`
	Actions     []string `json:"actions"`
	Description string   `json:"description,omitempty"`
}

// RoleName is the closed enumeration of provisioned role identities.
// Unknown names are preserved verbatim so lookups against storage still work,
// but they never trigger the admin or customer special cases.
type RoleName string

const (
	RoleAdmin    RoleName = "admin"
	RoleCustomer RoleName = "customer"
	RoleOperator RoleName = "operator"
	RoleFinance  RoleName = "finance"
)

// ParseRoleName maps a stored role name onto the enumeration. The comparison
// is case-sensitive: "Admin" is not the superuser role.
func ParseRoleName(name string) RoleName {
	switch RoleName(name) {
	case RoleAdmin:
		return RoleAdmin
	case RoleCustomer:
		return RoleCustomer
	case RoleOperator:
		return RoleOperator
	case RoleFinance:
		return RoleFinance
	default:
		return RoleName(name)
	}
}

// String returns the storage form of the role name.
func (n RoleName) String() string { return string(n) }

// PermissionName builds the canonical resource:action token.
func PermissionName(resource, action string) string {
	return resource + ":" + action
}

// EffectiveSet is the request-scoped set of permission strings granted to a
// principal. The all-access marker represents the admin short-circuit: every
// check passes without consulting the set.
type EffectiveSet struct {
	allAccess bool
	perms     map[string]struct{}
}

// NewEffectiveSet builds a set from explicit permission strings.
func NewEffectiveSet(perms ...string) EffectiveSet {
	set := EffectiveSet{perms: make(map[string]struct{}, len(perms))}
	for _, p := range perms {
		if p == "" {
			continue
		}
		set.perms[p] = struct{}{}
	}
	return set
}

// AllAccess returns the universal admin marker.
func AllAccess() EffectiveSet {
	return EffectiveSet{allAccess: true}
}

// IsAllAccess reports whether the set carries the admin marker.
func (s EffectiveSet) IsAllAccess() bool { return s.allAccess }

// Has reports whether a single permission string is granted.
func (s EffectiveSet) Has(perm string) bool {
	if s.allAccess {
		return true
	}
	_, ok := s.perms[perm]
	return ok
}

// HasAny reports whether at least one of the required permissions is granted.
// An empty requirement list always passes.
func (s EffectiveSet) HasAny(required ...string) bool {
	if len(required) == 0 || s.allAccess {
		return true
	}
	for _, r := range required {
		if _, ok := s.perms[r]; ok {
			return true
		}
	}
	return false
}

// Add unions a permission string into the set. No-op on the admin marker.
func (s *EffectiveSet) Add(perm string) {
	if s.allAccess || perm == "" {
		return
	}
	if s.perms == nil {
		s.perms = make(map[string]struct{})
	}
	s.perms[perm] = struct{}{}
}

// Len returns the number of distinct permission strings.
func (s EffectiveSet) Len() int { return len(s.perms) }

// Strings returns the granted permissions in sorted order. The admin marker
// yields a single "*" sentinel.
func (s EffectiveSet) Strings() []string {
	if s.allAccess {
		return []string{"*"}
	}
	out := make([]string, 0, len(s.perms))
	for p := range s.perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// User is the principal shape the resolver and guard consume. Role is nil when
// no role has been assigned yet.
type User struct {
	ID    int64
	Email string
	Role  *Role
}
