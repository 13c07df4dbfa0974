package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/registrack/backoffice-gateway/internal/access"
	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/http/response"
	"github.com/registrack/backoffice-gateway/internal/observability"
	"github.com/registrack/backoffice-gateway/internal/service"
)

// RequirePermission guards a route with one "module:action" permission, in
// the frontend's module naming (a gestion_ prefix and the editar alias are
// accepted). Every verdict is counted and, when an audit sink is wired,
// persisted.
func RequirePermission(audit service.AuditServiceInterface, permission string) func(http.Handler) http.Handler {
	module, action := splitPermission(permission)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			snapshot, ok := SnapshotFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access snapshot", nil)
				return
			}

			allowed := access.HasPermission(snapshot.Role, module, action)
			observability.RecordAccessDecision(r.Context(), module, action, allowed)
			annotate(r.Context(), func(a *requestAnnotations) { a.verdict = verdictLabel(allowed) })
			if audit != nil {
				audit.RecordDecision(domain.AccessDecision{
					Subject:   claims.Subject,
					RoleName:  snapshot.Role.Name,
					Module:    access.NormalizeModuleKey(module),
					Action:    access.NormalizeAction(action),
					Allowed:   allowed,
					Route:     r.URL.Path,
					RequestID: chimiddleware.GetReqID(r.Context()),
				})
			}

			if !allowed {
				observability.Audit(r, "access.denied", "subject", claims.Subject, "required", permission)
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permission", map[string]string{"required": permission})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdministrative guards routes that have no single module permission
// and instead need administrative standing as a whole.
func RequireAdministrative(audit service.AuditServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			snapshot, ok := SnapshotFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access snapshot", nil)
				return
			}

			allowed := snapshot.Access.Administrative
			observability.RecordAccessDecision(r.Context(), "administrative", "acceso", allowed)
			annotate(r.Context(), func(a *requestAnnotations) { a.verdict = verdictLabel(allowed) })
			if audit != nil {
				audit.RecordDecision(domain.AccessDecision{
					Subject:   claims.Subject,
					RoleName:  snapshot.Role.Name,
					Module:    "administrative",
					Action:    "acceso",
					Allowed:   allowed,
					Route:     r.URL.Path,
					RequestID: chimiddleware.GetReqID(r.Context()),
				})
			}

			if !allowed {
				observability.Audit(r, "access.denied", "subject", claims.Subject, "required", "administrative")
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "administrative access required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verdictLabel(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}

func splitPermission(permission string) (module, action string) {
	parts := strings.SplitN(permission, ":", 2)
	module = parts[0]
	action = "leer"
	if len(parts) == 2 && parts[1] != "" {
		action = parts[1]
	}
	return module, action
}
