package observability

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Audit emits one structured line on the operator security stream for a
// request-scoped event such as access.denied. The durable trail lives in the
// access_decisions table; this copy exists for log tailing and alerting, so
// it logs at Warn and stamps the request's trace when one is recording.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", r.Header.Get("X-Request-Id"),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		base = append(base, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	base = append(base, attrs...)
	slog.WarnContext(r.Context(), "security.audit", base...)
}
