package cache

// KeySchema prefixes every key the CLI and server write. Bump it when the
// rendered output or the stats encoding changes so stale entries are
// never read back.
const KeySchema = "v1:"

// NewVersionedKeyer returns the default key scheme under KeySchema.
func NewVersionedKeyer() Keyer {
	return NewScopedKeyer(NewDefaultKeyer(), KeySchema)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Store identity is already part of every stats key, so the prefix only
// separates key layouts.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v2:")
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

// ChartKey generates a prefixed key for chart artifact caching.
func (k *ScopedKeyer) ChartKey(recordHash string, opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(recordHash, opts)
}

// StatsKey generates a prefixed key for aggregated records.
func (k *ScopedKeyer) StatsKey(storeScope, mode, date string) string {
	return k.prefix + k.inner.StatsKey(storeScope, mode, date)
}
