package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [New].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a byte cache backend.
type Options struct {
	Backend  string // file (default), memory, redis, or none
	Dir      string // FileCache directory
	RedisURL string // RedisCache server
	Prefix   string // RedisCache key prefix
	Size     int    // MemoryCache entry limit
}

// New builds the backend named by opts.Backend.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileCache(opts.Dir)
	case BackendMemory:
		return NewMemoryCache(opts.Size)
	case BackendRedis:
		return NewRedisCache(ctx, opts.RedisURL, opts.Prefix)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
