// Package cache provides the lookup-or-compute caches used by gdatamvn.
//
// Two kinds of cache exist:
//
//   - [Presence] caches expensive filesystem products (downloaded and
//     extracted archives, analyzer output). An entry is its destination path;
//     the path existing on disk is the only hit signal. Entries are never
//     checked for staleness: delete the path to force recomputation.
//   - [Cache] implementations store opaque bytes under string keys with an
//     optional TTL. They memoize parsed dependency mappings. Backends:
//     [FileCache] (default), [MemoryCache] (in-process LRU), [RedisCache]
//     (shared), and [NullCache] (disabled).
//
// Neither kind locks: concurrent processes racing on the same entry may
// both compute it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/gdatamvn/pkg/observability"
)

// Cache stores byte values under string keys.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cached implements lookup-or-compute on top of a [Cache] for JSON values.
//
// On a hit the stored JSON is decoded into v and compute is not called.
// On a miss (or an unreadable entry) compute must populate v; v is then
// encoded and stored with ttl. Errors from the backend are treated as misses
// and never fail the call; only compute errors are returned.
func Cached(ctx context.Context, c Cache, keyType, key string, ttl time.Duration, v any, compute func() error) (hit bool, err error) {
	hooks := observability.Cache()
	if data, ok, gerr := c.Get(ctx, key); gerr == nil && ok {
		if json.Unmarshal(data, v) == nil {
			hooks.OnCacheHit(ctx, keyType)
			return true, nil
		}
	}
	hooks.OnCacheMiss(ctx, keyType)

	if err := compute(); err != nil {
		return false, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false, nil
	}
	if c.Set(ctx, key, data, ttl) == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return false, nil
}
