package authgw

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	subject   Subject
	expiresAt time.Time
}

// MemoryCache is the default process-local token cache. Concurrent requests
// may race to populate the same key after a miss; redundant verification
// calls in that window are tolerated, so no single-flight guard is needed.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFn   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		nowFn:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, token string) (Subject, bool, error) {
	key := digest(token)
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Subject{}, false, nil
	}
	if !entry.expiresAt.After(c.nowFn()) {
		delete(c.entries, key)
		return Subject{}, false, nil
	}
	return entry.subject, true, nil
}

func (c *MemoryCache) Put(_ context.Context, token string, subject Subject, ttl time.Duration) error {
	key := digest(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{subject: subject, expiresAt: c.nowFn().Add(ttl)}
	return nil
}

func (c *MemoryCache) Evict(_ context.Context, token string) error {
	key := digest(token)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
