package quota

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is a single process Store for development and tests. Entries
// vanish when their window ends
type MemoryStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &MemoryStore{cache: c, now: time.Now}
}

func (m *MemoryStore) Close() error {
	return m.cache.Close()
}

func (m *MemoryStore) Count(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.get(key)
	if err != nil || e == nil {
		return 0, err
	}

	return e.count, nil
}

func (m *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.get(key)
	if err != nil {
		return 0, err
	}

	if e == nil {
		e = &memoryEntry{expiresAt: m.now().Add(ttl)}
	}
	e.count++

	// Keep the first deadline, the window is fixed from the first hit
	if err := m.cache.SetWithTTL(key, e, e.expiresAt.Sub(m.now())); err != nil {
		return 0, err
	}

	return e.count, nil
}

func (m *MemoryStore) get(key string) (*memoryEntry, error) {
	v, err := m.cache.Get(key)
	if errors.Is(err, ttlcache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e := v.(*memoryEntry)
	if !m.now().Before(e.expiresAt) {
		return nil, nil
	}

	return e, nil
}
