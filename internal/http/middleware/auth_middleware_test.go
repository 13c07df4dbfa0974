package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/registrack/backoffice-gateway/internal/security"
	"github.com/registrack/backoffice-gateway/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testJWTManager() *security.JWTManager {
	return security.NewJWTManager("registrack-auth", "registrack-backoffice", testSecret)
}

func testResolver() service.AccessResolverInterface {
	return service.NewAccessService(service.NewNoopSnapshotCacheStore(), 0)
}

func issueToken(t *testing.T, identity map[string]any) string {
	t.Helper()
	token, err := testJWTManager().IssueAccessToken("42", "tok-1", identity, time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	var gotSnapshot *service.AccessSnapshot
	var gotRaw string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSnapshot, _ = SnapshotFromContext(r.Context())
		gotRaw = RawTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	mw := AuthMiddleware(testJWTManager(), testResolver())(next)

	token := issueToken(t, map[string]any{"rol": map[string]any{"id": float64(2), "nombre": "Administrador"}})
	r := httptest.NewRequest(http.MethodGet, "/api/v1/me/access", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	if gotSnapshot == nil || !gotSnapshot.Access.Admin {
		t.Errorf("expected admin snapshot in context, got %+v", gotSnapshot)
	}
	if gotRaw != token {
		t.Error("expected raw token in context for upstream forwarding")
	}
}

func TestAuthMiddlewareCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.Subject != "42" {
			t.Errorf("expected claims in context, got %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	})
	mw := AuthMiddleware(testJWTManager(), testResolver())(next)

	token := issueToken(t, map[string]any{"rol": "cliente"})
	r := httptest.NewRequest(http.MethodGet, "/api/v1/me/access", nil)
	r.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	mw := AuthMiddleware(testJWTManager(), testResolver())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	mw := AuthMiddleware(testJWTManager(), testResolver())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	token, err := testJWTManager().IssueAccessToken("42", "tok-1", map[string]any{"rol": "admin"}, -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	mw := AuthMiddleware(testJWTManager(), testResolver())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}
