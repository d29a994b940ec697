package rbac

import "context"

type principalContextKey struct{}

type permissionsContextKey struct{}

// ContextWithPrincipal attaches the authenticated user id to the context.
func ContextWithPrincipal(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, principalContextKey{}, userID)
}

// PrincipalFromContext extracts the authenticated user id, if any.
func PrincipalFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(principalContextKey{}).(int64)
	return id, ok
}

// ContextWithPermissions attaches the resolved effective set for downstream
// handlers. The guard writes it on successful authorization only.
func ContextWithPermissions(ctx context.Context, set EffectiveSet) context.Context {
	return context.WithValue(ctx, permissionsContextKey{}, set)
}

// PermissionsFromContext extracts the effective set resolved by the guard.
func PermissionsFromContext(ctx context.Context) (EffectiveSet, bool) {
	set, ok := ctx.Value(permissionsContextKey{}).(EffectiveSet)
	return set, ok
}
