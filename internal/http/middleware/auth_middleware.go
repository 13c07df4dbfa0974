package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/registrack/backoffice-gateway/internal/http/response"
	"github.com/registrack/backoffice-gateway/internal/observability"
	"github.com/registrack/backoffice-gateway/internal/security"
	"github.com/registrack/backoffice-gateway/internal/service"
)

type contextKey string

const (
	ClaimsContextKey   contextKey = "claims"
	SnapshotContextKey contextKey = "access_snapshot"
	RawTokenContextKey contextKey = "raw_token"
)

// AuthMiddleware verifies the access token and resolves the session's access
// snapshot up front, so downstream guards and handlers work from one shared
// classification. The raw token is kept in context for upstream forwarding.
func AuthMiddleware(jwtMgr *security.JWTManager, resolver service.AccessResolverInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			source := "cookie"
			raw := security.GetCookie(r, "access_token")
			if raw == "" {
				source = "header"
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
					raw = strings.TrimSpace(auth[7:])
				}
			}
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing", source)
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid", source)
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
				return
			}
			snapshot, err := resolver.Resolve(r.Context(), claims)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "unresolvable", source)
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unresolvable identity", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid", source)
			annotate(r.Context(), func(a *requestAnnotations) { a.subject = claims.Subject })

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, SnapshotContextKey, snapshot)
			ctx = context.WithValue(ctx, RawTokenContextKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

func SnapshotFromContext(ctx context.Context) (*service.AccessSnapshot, bool) {
	s, ok := ctx.Value(SnapshotContextKey).(*service.AccessSnapshot)
	return s, ok
}

func RawTokenFromContext(ctx context.Context) string {
	raw, _ := ctx.Value(RawTokenContextKey).(string)
	return raw
}
