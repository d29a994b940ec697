package rbac

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPermissionsRouter(t *testing.T, store Store) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := Guard{Store: store, Resolver: NewResolver(nil)}
	handler := NewPermissionsHandler(logger, store, guard)
	r := chi.NewRouter()
	r.Route("/permissions", handler.MountRoutes)
	return r
}

func getAs(router http.Handler, userID int64, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListPermissionsEndpoint(t *testing.T) {
	store := newMemStore()
	admin := store.addRole(RoleAdmin)
	store.addUser(1, admin)

	ctx := context.Background()
	_, err := store.EnsurePermission(ctx, "users", "read", "View user accounts")
	require.NoError(t, err)
	_, err = store.EnsurePermission(ctx, "invoices", "read", "View invoices")
	require.NoError(t, err)

	router := newPermissionsRouter(t, store)
	rec := getAs(router, 1, "/permissions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Permissions []permissionResponse `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Permissions, 2)
	assert.Equal(t, "users:read", resp.Permissions[0].Name)
}

func TestListPermissionsRequiresPermission(t *testing.T) {
	store := newMemStore()
	finance := store.addRole(RoleFinance)
	store.addUser(2, finance)

	router := newPermissionsRouter(t, store)
	rec := getAs(router, 2, "/permissions")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleEffectiveEndpoint(t *testing.T) {
	store := newMemStore()
	admin := store.addRole(RoleAdmin)
	store.addUser(1, admin)
	finance := store.addRole(RoleFinance)
	finance.RawPermissions = []byte(`[{"resource":"invoices","actions":["read","create"]}]`)

	router := newPermissionsRouter(t, store)
	rec := getAs(router, 1, "/permissions/roles/finance")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Role      string            `json:"role"`
		Groups    []PermissionGroup `json:"groups"`
		Effective []string          `json:"effective"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "finance", resp.Role)
	require.Len(t, resp.Groups, 1)
	assert.ElementsMatch(t, []string{"invoices:read", "invoices:create"}, resp.Effective)
}

func TestRoleEffectiveAdminWildcard(t *testing.T) {
	store := newMemStore()
	admin := store.addRole(RoleAdmin)
	store.addUser(1, admin)

	router := newPermissionsRouter(t, store)
	rec := getAs(router, 1, "/permissions/roles/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"*"`)
}

func TestRoleEffectiveUnknownRole(t *testing.T) {
	store := newMemStore()
	admin := store.addRole(RoleAdmin)
	store.addUser(1, admin)

	router := newPermissionsRouter(t, store)
	rec := getAs(router, 1, "/permissions/roles/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
