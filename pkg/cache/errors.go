package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrNotProduced is returned by [Presence.LookupOrCompute] when compute
	// succeeded but the entry's path still does not exist.
	ErrNotProduced = errors.New("cache entry not produced")

	// ErrUnknownBackend is returned by [New] for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)
