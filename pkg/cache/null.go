package cache

import (
	"context"
	"time"
)

// NullCache backs `cache.type = "none"` and the --no-cache flag. Every
// chart is rendered and every period aggregated from the store.
type NullCache struct{}

// NewNullCache returns a cache that keeps nothing.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (c *NullCache) Delete(context.Context, string) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
