package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the entry limit used when NewMemoryCache gets size <= 0.
const DefaultMemorySize = 256

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU cache. Entries do not survive the
// process; it is useful when one run processes many versions whose graphs
// repeat, and in tests.
type MemoryCache struct {
	mu    sync.Mutex
	items *lru.Cache[string, memoryEntry]
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	items, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{items: items}, nil
}

// Get retrieves a value; expired entries are evicted and reported as misses.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.items.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items.Add(key, e)
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	c.items.Remove(key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// Close purges all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.items.Purge()
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
