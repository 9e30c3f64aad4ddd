package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	version int64
	expires time.Time
}

// MemoryCache is a process-local TagCache for single instance deployments
// and tests.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	versions map[string]int64
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		versions: make(map[string]int64),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryCache) Get(ctx context.Context, tag, key string, dst any) error {
	m.mu.RLock()
	entry, ok := m.entries[tag+":"+key]
	version := m.versions[tag]
	m.mu.RUnlock()

	if !ok || entry.version != version || m.now().After(entry.expires) {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(entry.data, dst); err != nil {
		return fmt.Errorf("unmarshal %s entry failed: %w", tag, err)
	}
	return nil
}

func (m *MemoryCache) Version(ctx context.Context, tag string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[tag], nil
}

// Set drops values whose version has been invalidated meanwhile.
func (m *MemoryCache) Set(ctx context.Context, tag, key string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s entry failed: %w", tag, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if version != m.versions[tag] {
		return nil
	}
	m.entries[tag+":"+key] = memoryEntry{
		data:    data,
		version: version,
		expires: m.now().Add(m.ttl),
	}
	return nil
}

// Invalidate bumps the tag version and drops the entries it orphaned.
func (m *MemoryCache) Invalidate(ctx context.Context, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[tag]++
	prefix := tag + ":"
	for k := range m.entries {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
	return nil
}
