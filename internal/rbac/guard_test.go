package rbac

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	outcomes []string
}

func (r *recordingMetrics) RecordAuthzDecision(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestGuard(store Store) (Guard, *recordingMetrics) {
	metrics := &recordingMetrics{}
	return Guard{Store: store, Resolver: NewResolver(nil), Metrics: metrics}, metrics
}

func serveGuarded(t *testing.T, guard Guard, userID *int64, next http.Handler, perms ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if userID != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), *userID))
	}
	rec := httptest.NewRecorder()
	guard.Require(perms...)(next).ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardNoRequirementIsPublic(t *testing.T) {
	guard, metrics := newTestGuard(newMemStore())

	rec := serveGuarded(t, guard, nil, okHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, metrics.outcomes, "public routes record no decision")
}

func TestGuardUnauthenticated(t *testing.T) {
	guard, metrics := newTestGuard(newMemStore())

	rec := serveGuarded(t, guard, nil, okHandler(), "users:read")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
	assert.Equal(t, []string{DecisionUnauthenticated}, metrics.outcomes)
}

func TestGuardStoreFailureFailsClosed(t *testing.T) {
	store := newMemStore()
	store.findUserErr = errors.New("connection refused")
	guard, metrics := newTestGuard(store)

	userID := int64(1)
	rec := serveGuarded(t, guard, &userID, okHandler(), "users:read")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization failed")
	assert.Equal(t, []string{DecisionError}, metrics.outcomes)
}

func TestGuardPrincipalWithoutRole(t *testing.T) {
	store := newMemStore()
	store.addUser(5, nil)
	guard, metrics := newTestGuard(store)

	userID := int64(5)
	rec := serveGuarded(t, guard, &userID, okHandler(), "users:read")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization failed")
	assert.Equal(t, []string{DecisionDenied}, metrics.outcomes)
}

func TestGuardInsufficientPermissionsNamesRequirement(t *testing.T) {
	store := newMemStore()
	role := store.addRole(RoleFinance)
	role.RawPermissions = []byte(`[{"resource":"invoices","actions":["read"]}]`)
	store.addUser(9, role)
	guard, metrics := newTestGuard(store)

	userID := int64(9)
	rec := serveGuarded(t, guard, &userID, okHandler(), "payments:refund", "invoices:create")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "requires one of: payments:refund, invoices:create")
	assert.Equal(t, []string{DecisionDenied}, metrics.outcomes)
}

func TestGuardAnyOfRequirementSuffices(t *testing.T) {
	store := newMemStore()
	role := store.addRole(RoleFinance)
	role.RawPermissions = []byte(`[{"resource":"invoices","actions":["read"]}]`)
	store.addUser(9, role)
	guard, metrics := newTestGuard(store)

	userID := int64(9)
	rec := serveGuarded(t, guard, &userID, okHandler(), "payments:refund", "invoices:read")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{DecisionAllowed}, metrics.outcomes)
}

func TestGuardAdminPassesAnyRequirement(t *testing.T) {
	store := newMemStore()
	role := store.addRole(RoleAdmin)
	store.addUser(1, role)
	guard, _ := newTestGuard(store)

	userID := int64(1)
	rec := serveGuarded(t, guard, &userID, okHandler(), "made:up")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardAttachesEffectiveSetOnSuccess(t *testing.T) {
	store := newMemStore()
	role := store.addRole(RoleOperator)
	role.RawPermissions = []byte(`[{"resource":"service-requests","actions":["read","update"]}]`)
	store.addUser(4, role)
	guard, _ := newTestGuard(store)

	var seen EffectiveSet
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, ok = PermissionsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	userID := int64(4)
	rec := serveGuarded(t, guard, &userID, next, "service-requests:read")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok, "effective set must be on the context after authorization")
	assert.True(t, seen.Has("service-requests:update"))
	assert.False(t, seen.Has("users:read"))
}

func TestGuardDeniedLeavesContextBare(t *testing.T) {
	store := newMemStore()
	role := store.addRole(RoleFinance)
	store.addUser(2, role)
	guard, _ := newTestGuard(store)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	userID := int64(2)
	rec := serveGuarded(t, guard, &userID, next, "users:read")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called, "denied requests never reach the handler")
}

func TestDedupePermissions(t *testing.T) {
	out := dedupePermissions([]string{" users:read ", "users:read", "", "invoices:read"})
	assert.Equal(t, []string{"users:read", "invoices:read"}, out)
}
