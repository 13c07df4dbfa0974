package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/registrack/backoffice-gateway/internal/health"
	"github.com/registrack/backoffice-gateway/internal/http/handler"
	"github.com/registrack/backoffice-gateway/internal/http/middleware"
	"github.com/registrack/backoffice-gateway/internal/http/response"
	"github.com/registrack/backoffice-gateway/internal/security"
	"github.com/registrack/backoffice-gateway/internal/service"
)

type Dependencies struct {
	AccessHandler  *handler.AccessHandler
	RecordsHandler *handler.RecordsHandler
	AuditHandler   *handler.AuditHandler
	JWTManager     *security.JWTManager
	AccessResolver service.AccessResolverInterface
	AuditService   service.AuditServiceInterface
	CORSOrigins    []string
	APIRateLimit   int
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimit, time.Minute, "api").Middleware())

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(dep.JWTManager, dep.AccessResolver))

		r.Get("/me/access", dep.AccessHandler.Me)

		r.Route("/records", func(r chi.Router) {
			r.Use(middleware.RequireAdministrative(dep.AuditService))
			r.With(middleware.RequirePermission(dep.AuditService, "pagos:leer")).Get("/income-summary", dep.RecordsHandler.IncomeSummary)
			r.Get("/{kind}", dep.RecordsHandler.List)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdministrative(dep.AuditService))
			r.Get("/audit", dep.AuditHandler.List)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
