package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// requestAnnotations collects domain facts discovered deeper in the chain so
// the request log line can carry them: the logger plants the holder before
// routing, the auth middleware fills in the subject, the route guards fill in
// their verdict.
type requestAnnotations struct {
	mu      sync.Mutex
	subject string
	verdict string
}

const annotationsContextKey contextKey = "request_annotations"

func annotate(ctx context.Context, fn func(*requestAnnotations)) {
	a, ok := ctx.Value(annotationsContextKey).(*requestAnnotations)
	if !ok {
		return
	}
	a.mu.Lock()
	fn(a)
	a.mu.Unlock()
}

// StructuredRequestLogger emits one structured log line per request using
// slog, so request logs flow through the same OTel-enriched pipeline as the
// rest of the app, carrying the gateway's own attributes (subject, record
// kind, guard verdict) next to the transport ones.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ann := &requestAnnotations{}
		r = r.WithContext(context.WithValue(r.Context(), annotationsContextKey, ann))

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		routePattern := ""
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			routePattern = routeCtx.RoutePattern()
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"client_ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if kind := chi.URLParam(r, "kind"); kind != "" {
			attrs = append(attrs, "record_kind", kind)
		}
		ann.mu.Lock()
		if ann.subject != "" {
			attrs = append(attrs, "subject", ann.subject)
		}
		if ann.verdict != "" {
			attrs = append(attrs, "access_verdict", ann.verdict)
		}
		ann.mu.Unlock()

		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "http.request", attrs...)
			return
		}
		slog.InfoContext(r.Context(), "http.request", attrs...)
	})
}
