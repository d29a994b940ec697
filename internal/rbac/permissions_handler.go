package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-admin/meridian/internal/platform/httpx"
)

// PermissionsHandler exposes the permission catalog for administration UIs.
type PermissionsHandler struct {
	logger *slog.Logger
	store  Store
	guard  Guard
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, store Store, guard Guard) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, store: store, guard: guard}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("permissions:read"))
		r.Get("/", h.listPermissions)
		r.Get("/roles/{name}", h.roleEffective)
	})
}

type permissionResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.store.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]permissionResponse, 0, len(perms))
	for _, perm := range perms {
		out = append(out, permissionResponse{
			ID:          perm.ID,
			Name:        perm.Name,
			Resource:    perm.Resource,
			Action:      perm.Action,
			Description: perm.Description,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": out})
}

// roleEffective reports what a role grants in practice: the grouped cache as
// stored, and the flat effective strings after resolution, including the admin
// wildcard and the customer overlay.
func (h *PermissionsHandler) roleEffective(w http.ResponseWriter, r *http.Request) {
	name := ParseRoleName(chi.URLParam(r, "name"))
	role, err := h.store.FindRoleByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("find role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	raw, err := h.store.GetEffectivePermissionsRaw(r.Context(), role.ID)
	if err != nil {
		h.logger.Error("read role cache", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	groups, err := DecodeGroups(raw)
	if err != nil {
		h.logger.Warn("role cache unreadable", slog.String("role", name.String()))
		groups = nil
	}

	resolver := NewResolver(h.logger)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":      name.String(),
		"groups":    groups,
		"effective": resolver.Resolve(name, raw).Strings(),
	})
}
