package appointments

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-admin/meridian/internal/platform/httpx"
	"github.com/meridian-admin/meridian/internal/rbac"
)

// Handler manages appointment endpoints.
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

// MountRoutes registers appointment routes with their required permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("appointments:read", "appointments:read_own"))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("appointments:create", "appointments:write_own"))
		r.Post("/", h.book)
	})
}

type appointmentResponse struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	Topic       string    `json:"topic"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		items []Appointment
		err   error
	)
	set, _ := rbac.PermissionsFromContext(r.Context())
	if set.Has("appointments:read") {
		items, err = h.service.List(r.Context())
	} else {
		customerID, _ := rbac.PrincipalFromContext(r.Context())
		items, err = h.service.ListOwn(r.Context(), customerID)
	}
	if err != nil {
		h.logger.Error("list appointments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]appointmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, appointmentResponse{
			ID:          item.ID,
			CustomerID:  item.CustomerID,
			Topic:       item.Topic,
			ScheduledAt: item.ScheduledAt,
			Status:      item.Status,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"appointments": out})
}

type bookRequest struct {
	Topic       string    `json:"topic" validate:"required,max=200"`
	Email       string    `json:"email" validate:"omitempty,email"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "topic and scheduled_at are required")
		return
	}
	customerID, _ := rbac.PrincipalFromContext(r.Context())
	appt, err := h.service.Book(r.Context(), customerID, req.Email, req.Topic, req.ScheduledAt)
	if err != nil {
		h.logger.Error("book appointment", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, appointmentResponse{
		ID:          appt.ID,
		CustomerID:  appt.CustomerID,
		Topic:       appt.Topic,
		ScheduledAt: appt.ScheduledAt,
		Status:      appt.Status,
	})
}
