package service

import (
	"context"
	"time"

	"github.com/registrack/backoffice-gateway/internal/access"
	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/repository"
	"github.com/registrack/backoffice-gateway/internal/security"
)

// SnapshotCacheStore holds serialized per-session snapshots keyed by a
// namespace (what is cached) and a key (for whom). Implementations are
// best-effort: a failing store must never block request handling.
type SnapshotCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

// AccessResolverInterface resolves a verified token into the session's
// access snapshot and answers permission checks against it.
type AccessResolverInterface interface {
	Resolve(ctx context.Context, claims *security.Claims) (*AccessSnapshot, error)
	Check(ctx context.Context, claims *security.Claims, module, action string) (bool, error)
	InvalidateSubject(ctx context.Context, subject string) error
}

// RecordServiceInterface serves canonical record sets built from upstream
// payloads.
type RecordServiceInterface interface {
	Records(ctx context.Context, kind domain.RecordKind, opts RecordOptions) (domain.RecordSet, error)
	IncomeSummary(ctx context.Context, opts RecordOptions) (domain.RecordSet, error)
}

// AuditServiceInterface records access decisions and serves the admin trail.
type AuditServiceInterface interface {
	RecordDecision(decision domain.AccessDecision)
	List(filter repository.AuditFilter, page repository.PageRequest) (repository.PageResult[domain.AccessDecision], error)
	Close(ctx context.Context) error
}

// RawFetcher is the slice of the upstream client the record service needs.
type RawFetcher interface {
	FetchRaw(ctx context.Context, kind domain.RecordKind, bearerToken string) (any, error)
}

// AccessSnapshot is what one verified session resolves to: the canonical
// role plus the capability flags derived from it. It is immutable once
// built; a new token produces a new snapshot.
type AccessSnapshot struct {
	Role   *domain.RoleModel `json:"role"`
	Access access.Access     `json:"access"`
}
