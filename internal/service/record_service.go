package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/normalize"
	"github.com/registrack/backoffice-gateway/internal/observability"
)

const recordSetNamespace = "record_set"

// RecordSortDaysRemaining orders renewal-style records by ascending urgency.
const RecordSortDaysRemaining = "days_remaining"

// RecordOptions carry the per-request knobs for a record fetch. The bearer
// token is forwarded upstream so the business API applies its own checks.
type RecordOptions struct {
	BearerToken string
	Sort        string
}

// RecordService fetches raw payloads, normalizes them into canonical record
// sets, and caches the normalized result per kind. The cache is shared
// across sessions: routes serving records are guarded before this layer, and
// the business API returns the same administrative data to every authorized
// caller.
type RecordService struct {
	fetcher RawFetcher
	builder *normalize.Builder
	cache   SnapshotCacheStore
	ttl     time.Duration
	sf      singleflight.Group
}

func NewRecordService(fetcher RawFetcher, builder *normalize.Builder, cache SnapshotCacheStore, ttl time.Duration) *RecordService {
	if builder == nil {
		builder = normalize.NewBuilder()
	}
	return &RecordService{fetcher: fetcher, builder: builder, cache: cache, ttl: ttl}
}

func (s *RecordService) Records(ctx context.Context, kind domain.RecordKind, opts RecordOptions) (domain.RecordSet, error) {
	if !domain.ValidRecordKind(kind) {
		return domain.RecordSet{}, fmt.Errorf("unknown record kind %q", kind)
	}

	set, err := s.buildCached(ctx, kind, opts.BearerToken)
	if err != nil {
		return domain.RecordSet{}, err
	}

	if opts.Sort == RecordSortDaysRemaining {
		normalize.SortByDaysRemaining(set.Records)
	}
	return set, nil
}

func (s *RecordService) IncomeSummary(ctx context.Context, opts RecordOptions) (domain.RecordSet, error) {
	return s.Records(ctx, domain.KindIncomeSummary, opts)
}

func (s *RecordService) buildCached(ctx context.Context, kind domain.RecordKind, bearerToken string) (domain.RecordSet, error) {
	cacheKey := string(kind)

	if s.cache != nil && s.ttl > 0 {
		if set, ok := s.cachedSet(ctx, cacheKey); ok {
			observability.RecordRecordCacheEvent(ctx, string(kind), "hit")
			return set, nil
		}
		observability.RecordRecordCacheEvent(ctx, string(kind), "miss")
	}

	result, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		if s.cache != nil && s.ttl > 0 {
			if set, ok := s.cachedSet(ctx, cacheKey); ok {
				return set, nil
			}
		}

		payload, err := s.fetcher.FetchRaw(ctx, kind, bearerToken)
		if err != nil {
			return nil, err
		}

		set := s.builder.Build(kind, payload)
		outcome := "built"
		if set.NoData {
			outcome = "no_data"
		}
		observability.RecordShapeProbeOutcome(ctx, string(kind), outcome)
		observability.RecordRecordSetSize(ctx, string(kind), len(set.Records))

		if s.cache != nil && s.ttl > 0 {
			if payload, err := json.Marshal(set); err == nil {
				_ = s.cache.Set(ctx, recordSetNamespace, cacheKey, payload, s.ttl)
			}
		}
		return set, nil
	})
	if err != nil {
		return domain.RecordSet{}, err
	}
	set, ok := result.(domain.RecordSet)
	if !ok {
		return domain.RecordSet{}, fmt.Errorf("invalid record set result type")
	}
	return cloneRecordSet(set), nil
}

func (s *RecordService) cachedSet(ctx context.Context, cacheKey string) (domain.RecordSet, bool) {
	payload, ok, err := s.cache.Get(ctx, recordSetNamespace, cacheKey)
	if err != nil || !ok {
		return domain.RecordSet{}, false
	}
	var set domain.RecordSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return domain.RecordSet{}, false
	}
	if set.Records == nil {
		set.Records = []domain.CanonicalRecord{}
	}
	return set, true
}

// cloneRecordSet copies the record slice so per-request sorting never
// mutates what the singleflight handed to concurrent callers.
func cloneRecordSet(set domain.RecordSet) domain.RecordSet {
	out := set
	out.Records = append([]domain.CanonicalRecord(nil), set.Records...)
	if out.Records == nil {
		out.Records = []domain.CanonicalRecord{}
	}
	return out
}
