// Package cache stores computed layouts and rendered previews by content
// hash.
//
// Layout results depend only on the input graph and the layout options, so
// the pipeline keys them by a SHA-256 of the canonical graph document plus a
// hash of the options (see [Keyer]). Three backends implement [Cache]:
//
//   - [FileCache]: one file per entry, grouped by key kind, used by the CLI
//   - [RedisCache]: shared cache for `atlas serve` replicas
//   - [NullCache]: caching disabled
//
// [Instrument] wraps any backend so hits, misses and writes are reported to
// the observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil). Errors are reserved for backend
// failures; callers treat them as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
