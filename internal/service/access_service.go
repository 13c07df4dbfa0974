package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/registrack/backoffice-gateway/internal/access"
	"github.com/registrack/backoffice-gateway/internal/observability"
	"github.com/registrack/backoffice-gateway/internal/security"
)

const accessSnapshotNamespace = "access_snapshot"

// AccessService turns verified claims into cached access snapshots.
// Resolution itself is pure computation over the claim set, so the cache is
// about amortizing JSON work per session, not hiding I/O; the singleflight
// keeps concurrent first-hits of a session from racing the store.
type AccessService struct {
	cacheStore SnapshotCacheStore
	ttl        time.Duration
	sf         singleflight.Group
}

func NewAccessService(cacheStore SnapshotCacheStore, ttl time.Duration) *AccessService {
	return &AccessService{cacheStore: cacheStore, ttl: ttl}
}

func (s *AccessService) Resolve(ctx context.Context, claims *security.Claims) (*AccessSnapshot, error) {
	if claims == nil {
		return nil, fmt.Errorf("missing claims")
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, fmt.Errorf("missing subject")
	}
	tokenID := strings.TrimSpace(claims.TokenID)
	if tokenID == "" {
		tokenID = "none"
	}
	cacheKey := fmt.Sprintf("subject:%s:token:%s", subject, tokenID)

	if s.cacheStore != nil && s.ttl > 0 {
		if snapshot, ok := s.cachedSnapshot(ctx, cacheKey); ok {
			observability.RecordAccessSnapshotCacheEvent(ctx, "hit")
			return snapshot, nil
		}
		observability.RecordAccessSnapshotCacheEvent(ctx, "miss")
	}

	result, err, shared := s.sf.Do(cacheKey, func() (any, error) {
		if s.cacheStore != nil && s.ttl > 0 {
			if snapshot, ok := s.cachedSnapshot(ctx, cacheKey); ok {
				return snapshot, nil
			}
		}

		ref := access.ParseIdentity(claims.Identity)
		snapshot := &AccessSnapshot{
			Role:   ref.Model(),
			Access: access.ClassifyRole(ref.Model()),
		}
		observability.RecordAccessClassification(ctx, roleRefShape(ref.Kind), snapshot.Access.Administrative)

		if s.cacheStore != nil && s.ttl > 0 {
			if payload, err := json.Marshal(snapshot); err == nil {
				_ = s.cacheStore.Set(ctx, accessSnapshotNamespace, cacheKey, payload, s.ttl)
			}
		}
		return snapshot, nil
	})
	if shared {
		observability.RecordAccessSnapshotCacheEvent(ctx, "singleflight_shared")
	}
	if err != nil {
		return nil, err
	}
	snapshot, ok := result.(*AccessSnapshot)
	if !ok {
		return nil, fmt.Errorf("invalid snapshot result type")
	}
	return snapshot, nil
}

// Check answers a single permission question for the session.
func (s *AccessService) Check(ctx context.Context, claims *security.Claims, module, action string) (bool, error) {
	snapshot, err := s.Resolve(ctx, claims)
	if err != nil {
		return false, err
	}
	return access.HasPermission(snapshot.Role, module, action), nil
}

// InvalidateSubject drops all cached snapshots. Per-subject invalidation
// would need a subject index in the store; sessions are short enough that a
// full flush on role edits is acceptable.
func (s *AccessService) InvalidateSubject(ctx context.Context, _ string) error {
	if s.cacheStore == nil {
		return nil
	}
	return s.cacheStore.InvalidateNamespace(ctx, accessSnapshotNamespace)
}

func (s *AccessService) cachedSnapshot(ctx context.Context, cacheKey string) (*AccessSnapshot, bool) {
	payload, ok, err := s.cacheStore.Get(ctx, accessSnapshotNamespace, cacheKey)
	if err != nil || !ok {
		return nil, false
	}
	var snapshot AccessSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, false
	}
	return &snapshot, true
}

func roleRefShape(kind access.RoleRefKind) string {
	switch kind {
	case access.RoleRefNumericID:
		return "numeric_id"
	case access.RoleRefNameOnly:
		return "name_only"
	case access.RoleRefFullRole:
		return "full_role"
	default:
		return "none"
	}
}
