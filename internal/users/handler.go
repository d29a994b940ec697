package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-admin/meridian/internal/platform/httpx"
	"github.com/meridian-admin/meridian/internal/rbac"
	"github.com/meridian-admin/meridian/internal/shared"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Guard
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers user routes with their required permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("users:read"))
		r.Get("/", h.listUsers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("roles:read"))
		r.Get("/roles", h.listRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("roles:update"))
		r.Put("/{id}/role", h.assignRole)
	})
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			IsActive:  u.IsActive,
			Role:      u.RoleName,
			CreatedAt: u.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": out})
}

type roleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name, Description: role.Description})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

type assignRoleRequest struct {
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role_id is required")
		return
	}

	actorID, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.AssignRole(r.Context(), actorID, userID, req.RoleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("assign role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
