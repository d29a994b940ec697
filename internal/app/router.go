package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-admin/meridian/internal/appointments"
	"github.com/meridian-admin/meridian/internal/auth"
	"github.com/meridian-admin/meridian/internal/observability"
	"github.com/meridian-admin/meridian/internal/rbac"
	"github.com/meridian-admin/meridian/internal/requests"
	"github.com/meridian-admin/meridian/internal/users"
	"github.com/meridian-admin/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthMiddleware      auth.Middleware
	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	RequestsHandler     *requests.Handler
	AppointmentsHandler *appointments.Handler
	PermissionsHandler  *rbac.PermissionsHandler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.AuthMiddleware,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RequestsHandler != nil {
		r.Route("/service-requests", params.RequestsHandler.MountRoutes)
	}
	if params.AppointmentsHandler != nil {
		r.Route("/appointments", params.AppointmentsHandler.MountRoutes)
	}
	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
