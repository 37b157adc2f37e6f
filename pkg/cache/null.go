package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs the "none" backend: every report is
// parsed again on each run.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return &NullCache{} }

// Get always misses.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (*NullCache) Delete(context.Context, string) error { return nil }

// Close is a no-op.
func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
