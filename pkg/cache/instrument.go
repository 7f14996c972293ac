package cache

import (
	"context"
	"time"

	"github.com/matzehuels/atlas/pkg/observability"
)

// Instrument wraps c so every Get reports a hit or miss and every Set
// reports its size to the registered observability cache hooks. keyType
// labels the events, e.g. "layout". An empty keyType labels each event with
// the key's own prefix, so one cache shared by layouts and artifacts reports
// them separately.
func Instrument(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

type instrumented struct {
	Cache
	keyType string
}

func (c *instrumented) label(key string) string {
	if c.keyType != "" {
		return c.keyType
	}
	return KeyKind(key)
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil && hit {
		observability.Cache().OnCacheHit(ctx, c.label(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, c.label(key))
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.label(key), len(data))
	return nil
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *instrumented) Clear(ctx context.Context) error {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}
