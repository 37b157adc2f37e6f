package cache

import "slices"

// MappingKeyOpts holds the parse settings that change a parsed mapping.
type MappingKeyOpts struct {
	// Exclude lists the identifier prefixes dropped from the terminal set.
	Exclude []string
}

// Keyer builds cache keys.
type Keyer interface {
	// MappingKey returns the key for a dependency mapping parsed from a
	// graph file whose content hash is graphHash.
	MappingKey(graphHash string, opts MappingKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MappingKey hashes graphHash together with the sorted exclusion list, so
// the same graph parsed under two policies never shares an entry.
func (DefaultKeyer) MappingKey(graphHash string, opts MappingKeyOpts) string {
	exclude := slices.Clone(opts.Exclude)
	slices.Sort(exclude)
	return hashKey("mapping", append([]string{graphHash}, exclude...)...)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating deployments that share
// one backend (e.g. several group ids using the same Redis).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MappingKey generates a prefixed mapping key.
func (k *ScopedKeyer) MappingKey(graphHash string, opts MappingKeyOpts) string {
	return k.prefix + k.inner.MappingKey(graphHash, opts)
}
