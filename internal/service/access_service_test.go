package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/registrack/backoffice-gateway/internal/security"
)

type countingCacheStore struct {
	SnapshotCacheStore
	mu   sync.Mutex
	gets int
	sets int
}

func (c *countingCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.SnapshotCacheStore.Get(ctx, namespace, key)
}

func (c *countingCacheStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.SnapshotCacheStore.Set(ctx, namespace, key, value, ttl)
}

func adminClaims() *security.Claims {
	return &security.Claims{
		Subject: "42",
		TokenID: "tok-1",
		Identity: map[string]any{
			"rol": map[string]any{
				"id":     float64(2),
				"nombre": "Administrador",
			},
		},
	}
}

func TestAccessServiceResolveClassifies(t *testing.T) {
	svc := NewAccessService(NewNoopSnapshotCacheStore(), 0)

	snapshot, err := svc.Resolve(context.Background(), adminClaims())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !snapshot.Access.Administrative || !snapshot.Access.Admin {
		t.Errorf("expected admin classification, got %+v", snapshot.Access)
	}
	if snapshot.Role == nil || snapshot.Role.Name != "Administrador" {
		t.Errorf("expected role model, got %+v", snapshot.Role)
	}
}

func TestAccessServiceResolveCaches(t *testing.T) {
	store := &countingCacheStore{SnapshotCacheStore: NewInMemorySnapshotCacheStore()}
	svc := NewAccessService(store, time.Minute)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, adminClaims())
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.Resolve(ctx, adminClaims())
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.Access != second.Access {
		t.Errorf("snapshots diverge: %+v vs %+v", first.Access, second.Access)
	}

	store.mu.Lock()
	sets := store.sets
	store.mu.Unlock()
	if sets != 1 {
		t.Errorf("expected one cache write, got %d", sets)
	}
}

func TestAccessServiceResolveDistinguishesSessions(t *testing.T) {
	store := &countingCacheStore{SnapshotCacheStore: NewInMemorySnapshotCacheStore()}
	svc := NewAccessService(store, time.Minute)
	ctx := context.Background()

	claims := adminClaims()
	if _, err := svc.Resolve(ctx, claims); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	other := adminClaims()
	other.TokenID = "tok-2"
	if _, err := svc.Resolve(ctx, other); err != nil {
		t.Fatalf("resolve other: %v", err)
	}

	store.mu.Lock()
	sets := store.sets
	store.mu.Unlock()
	if sets != 2 {
		t.Errorf("expected a cache write per session, got %d", sets)
	}
}

func TestAccessServiceCheck(t *testing.T) {
	svc := NewAccessService(NewNoopSnapshotCacheStore(), 0)
	ctx := context.Background()

	claims := &security.Claims{
		Subject: "7",
		TokenID: "tok-3",
		Identity: map[string]any{
			"id_rol": float64(5),
			"rol": map[string]any{
				"nombre": "Consultor",
				"permisos": map[string]any{
					"ventas": map[string]any{"leer": true},
				},
			},
		},
	}

	allowed, err := svc.Check(ctx, claims, "gestion_ventas", "leer")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Error("expected ventas read to be allowed")
	}

	allowed, err = svc.Check(ctx, claims, "ventas", "eliminar")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if allowed {
		t.Error("expected ventas delete to be denied")
	}
}

func TestAccessServiceCheckAdminShortCircuit(t *testing.T) {
	svc := NewAccessService(NewNoopSnapshotCacheStore(), 0)

	allowed, err := svc.Check(context.Background(), adminClaims(), "modulo_desconocido", "eliminar")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Error("admin should pass any permission check")
	}
}

func TestAccessServiceResolveRejectsBadClaims(t *testing.T) {
	svc := NewAccessService(NewNoopSnapshotCacheStore(), 0)

	if _, err := svc.Resolve(context.Background(), nil); err == nil {
		t.Error("expected error for nil claims")
	}
	if _, err := svc.Resolve(context.Background(), &security.Claims{Subject: "  "}); err == nil {
		t.Error("expected error for blank subject")
	}
}

func TestAccessServiceInvalidateSubject(t *testing.T) {
	store := &countingCacheStore{SnapshotCacheStore: NewInMemorySnapshotCacheStore()}
	svc := NewAccessService(store, time.Minute)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, adminClaims()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := svc.InvalidateSubject(ctx, "42"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.Resolve(ctx, adminClaims()); err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}

	store.mu.Lock()
	sets := store.sets
	store.mu.Unlock()
	if sets != 2 {
		t.Errorf("expected recompute after invalidation, got %d cache writes", sets)
	}
}
