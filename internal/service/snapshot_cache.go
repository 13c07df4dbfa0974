package service

import (
	"context"
	"sync"
	"time"
)

// NoopSnapshotCacheStore disables caching; every resolve recomputes.
type NoopSnapshotCacheStore struct{}

func NewNoopSnapshotCacheStore() *NoopSnapshotCacheStore {
	return &NoopSnapshotCacheStore{}
}

func (s *NoopSnapshotCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopSnapshotCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopSnapshotCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type snapshotCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemorySnapshotCacheStore is the single-instance default. Entries expire
// lazily on read.
type InMemorySnapshotCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]snapshotCacheEntry
}

func NewInMemorySnapshotCacheStore() *InMemorySnapshotCacheStore {
	return &InMemorySnapshotCacheStore{
		store: make(map[string]map[string]snapshotCacheEntry),
	}
}

func (s *InMemorySnapshotCacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	ns, ok := s.store[namespace]
	if !ok {
		s.mu.RUnlock()
		return nil, false, nil
	}
	entry, ok := ns[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if ns2, ok2 := s.store[namespace]; ok2 {
			delete(ns2, key)
			if len(ns2) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemorySnapshotCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]snapshotCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = snapshotCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemorySnapshotCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}
