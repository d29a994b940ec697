package requests

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

// Handler manages service request endpoints. Routes accept either the
// hyphenated staff permissions or the legacy underscore customer overlay, so
// both conventions stay routable.
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

// MountRoutes registers service request routes with their required permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("service-requests:read", "service_requests:read_own"))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("service-requests:create", "service_requests:write_own"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("service-requests:assign"))
		r.Put("/{id}/assignee", h.assign)
	})
}

type requestResponse struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	TaxYear    int       `json:"tax_year"`
	Category   string    `json:"category"`
	Summary    string    `json:"summary"`
	Status     string    `json:"status"`
	AssigneeID *int64    `json:"assignee_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		items []ServiceRequest
		err   error
	)
	// The guard attached the effective set on allow. Callers holding only the
	// own-scoped legacy permission see their own requests.
	set, _ := rbac.PermissionsFromContext(r.Context())
	if set.Has("service-requests:read") {
		items, err = h.service.List(r.Context())
	} else {
		customerID, _ := rbac.PrincipalFromContext(r.Context())
		items, err = h.service.ListOwn(r.Context(), customerID)
	}
	if err != nil {
		h.logger.Error("list service requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]requestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"service_requests": out})
}

type createRequest struct {
	TaxYear  int    `json:"tax_year" validate:"required,gte=2000"`
	Category string `json:"category" validate:"required"`
	Summary  string `json:"summary" validate:"required,max=500"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tax_year, category and summary are required")
		return
	}
	customerID, _ := rbac.PrincipalFromContext(r.Context())
	created, err := h.service.Create(r.Context(), customerID, req.TaxYear, req.Category, req.Summary)
	if err != nil {
		h.logger.Error("create service request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

type assignRequest struct {
	AssigneeID int64 `json:"assignee_id" validate:"required,gt=0"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request id")
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "assignee_id is required")
		return
	}
	if err := h.service.Assign(r.Context(), requestID, req.AssigneeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("assign service request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toResponse(req ServiceRequest) requestResponse {
	return requestResponse{
		ID:         req.ID,
		CustomerID: req.CustomerID,
		TaxYear:    req.TaxYear,
		Category:   req.Category,
		Summary:    req.Summary,
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
		CreatedAt:  req.CreatedAt,
	}
}
