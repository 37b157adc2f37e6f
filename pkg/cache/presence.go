package cache

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/gdatamvn/pkg/observability"
)

// Presence is a lookup-or-compute cache for filesystem products. The cache
// key is the product's path and existence of that path is the only hit
// signal.
type Presence struct {
	kind string
	dir  bool
}

// NewPresence returns a Presence cache whose hook events are labeled kind.
// When dir is true an entry only counts as present if it is a directory.
func NewPresence(kind string, dir bool) *Presence {
	return &Presence{kind: kind, dir: dir}
}

// Exists reports whether path is a present entry.
func (p *Presence) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !p.dir || info.IsDir()
}

// LookupOrCompute returns immediately with hit=true if path is present.
// Otherwise it runs compute and then requires path to exist, returning
// [ErrNotProduced] if it does not.
func (p *Presence) LookupOrCompute(ctx context.Context, path string, compute func(context.Context) error) (hit bool, err error) {
	hooks := observability.Cache()
	if p.Exists(path) {
		hooks.OnCacheHit(ctx, p.kind)
		return true, nil
	}
	hooks.OnCacheMiss(ctx, p.kind)

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := compute(ctx); err != nil {
		return false, err
	}
	if !p.Exists(path) {
		return false, fmt.Errorf("%w: %s", ErrNotProduced, path)
	}
	hooks.OnCacheSet(ctx, p.kind, 0)
	return false, nil
}
