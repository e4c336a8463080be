// Package cache stores rendered chart artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [MemoryCache]: bounded in-process LRU (HTTP server)
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from the content being rendered, not from the
// request. Two requests that aggregate to the same record with the same
// chart options share an entry, and editing any day in a period changes the
// record hash and therefore the key, so entries never need invalidating.
//
//	keyer := cache.NewVersionedKeyer()
//	key := keyer.ChartKey(cache.Hash(recordJSON), cache.ChartKeyOpts{Format: "svg"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached value and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// ChartKey returns the key of a rendered chart artifact.
	ChartKey(recordHash string, opts ChartKeyOpts) string

	// StatsKey returns the key of an aggregated period record.
	StatsKey(storeScope, mode, date string) string
}

// ChartKeyOpts holds every option that changes rendered output.
type ChartKeyOpts struct {
	Format      string  `json:"format"`
	Title       string  `json:"title"`
	UnitLabel   string  `json:"unit_label,omitempty"`
	UnitSuffix  string  `json:"unit_suffix,omitempty"`
	LegendTitle string  `json:"legend_title,omitempty"`
	Font        string  `json:"font,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ChartKey hashes the record hash together with the render options.
func (DefaultKeyer) ChartKey(recordHash string, opts ChartKeyOpts) string {
	return hashKey("chart", recordHash, opts)
}

// StatsKey is readable on purpose so entries can be inspected in redis.
func (DefaultKeyer) StatsKey(storeScope, mode, date string) string {
	return "stats:" + storeScope + ":" + mode + ":" + date
}

var _ Keyer = DefaultKeyer{}
