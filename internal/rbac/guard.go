package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/meridian-admin/meridian/internal/platform/httpx"
)

// DecisionRecorder observes authorization outcomes for metrics.
type DecisionRecorder interface {
	RecordAuthzDecision(outcome string)
}

// Authorization outcomes reported to the DecisionRecorder.
const (
	DecisionAllowed         = "allowed"
	DecisionDenied          = "denied"
	DecisionUnauthenticated = "unauthenticated"
	DecisionError           = "error"
)

// Guard authorizes inbound requests against permissions registered per route.
// Requirements are declared explicitly at mount time via Require; there is no
// runtime reflection over handlers.
type Guard struct {
	Store    Store
	Resolver *Resolver
	Logger   *slog.Logger
	Metrics  DecisionRecorder
}

// Require returns middleware enforcing that the principal holds at least one
// of the given permissions (OR across the list). With no permissions the
// route is public and the middleware passes every request through.
//
// The principal's role is fetched fresh from storage on every request so role
// changes apply without reissuing credentials. Any internal failure denies
// the request: the guard never fails open.
func (g Guard) Require(perms ...string) func(http.Handler) http.Handler {
	required := dedupePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := PrincipalFromContext(r.Context())
			if !ok {
				g.record(DecisionUnauthenticated)
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}

			user, err := g.Store.FindUserWithRole(r.Context(), userID)
			if err != nil {
				g.record(DecisionError)
				if g.Logger != nil {
					g.Logger.Error("load principal for authorization",
						slog.Int64("user_id", userID), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "authorization failed")
				return
			}
			if user.Role == nil {
				g.record(DecisionDenied)
				if g.Logger != nil {
					g.Logger.Warn("principal has no role", slog.Int64("user_id", userID))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "authorization failed")
				return
			}

			set := g.Resolver.ResolveUser(user)
			if !set.HasAny(required...) {
				g.record(DecisionDenied)
				if g.Logger != nil {
					g.Logger.Warn("insufficient permissions",
						slog.Int64("user_id", userID),
						slog.String("role", user.Role.Name.String()),
						slog.String("required", strings.Join(required, ",")))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden",
					"requires one of: "+strings.Join(required, ", "))
				return
			}

			g.record(DecisionAllowed)
			ctx := ContextWithPermissions(r.Context(), set)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g Guard) record(outcome string) {
	if g.Metrics != nil {
		g.Metrics.RecordAuthzDecision(outcome)
	}
}

func dedupePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
