// Package observability lets atlas report layout, cache and HTTP events to a
// metrics backend without the library packages importing one.
//
// The layout core never calls into this package. The pipeline runner, the
// cache wrappers in [github.com/matzehuels/atlas/pkg/cache] and the HTTP
// server emit events through the process-wide registry below. Every hook
// defaults to a no-op; main installs real ones at startup, for example the
// Prometheus hooks in [github.com/matzehuels/atlas/pkg/observability/prom]
// used by `atlas serve`:
//
//	reg := prometheus.NewRegistry()
//	prom.New(reg).Install()
//
// Emitting an event:
//
//	start := time.Now()
//	observability.Layout().OnLayoutStart(ctx, "radial", n)
//	placed, err := run()
//	observability.Layout().OnLayoutComplete(ctx, "radial", placed, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// LayoutHooks receives events from layout runs.
type LayoutHooks interface {
	// OnLayoutStart records the start of a layout over nodeCount nodes.
	OnLayoutStart(ctx context.Context, algorithm string, nodeCount int)

	// OnLayoutComplete records a finished layout. placed is the number of
	// nodes that received a position; it is zero when err is set.
	OnLayoutComplete(ctx context.Context, algorithm string, placed int, duration time.Duration, err error)
}

// CacheHooks receives events from instrumented caches. keyType groups keys
// by kind ("layout", "artifact").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnRequest records a served request. route is the matched route
	// pattern, not the raw path.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopLayoutHooks discards layout events.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks discards request events.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// registry holds the installed hooks. Writes happen at startup and in tests.
type registry struct {
	mu     sync.RWMutex
	layout LayoutHooks
	cache  CacheHooks
	server ServerHooks
}

var hooks = &registry{
	layout: NoopLayoutHooks{},
	cache:  NoopCacheHooks{},
	server: NoopServerHooks{},
}

func (r *registry) update(fn func()) {
	r.mu.Lock()
	fn()
	r.mu.Unlock()
}

func (r *registry) snapshot() (LayoutHooks, CacheHooks, ServerHooks) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layout, r.cache, r.server
}

// SetLayoutHooks installs h. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		hooks.update(func() { hooks.layout = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		hooks.update(func() { hooks.cache = h })
	}
}

// SetServerHooks installs h. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		hooks.update(func() { hooks.server = h })
	}
}

// Layout returns the installed layout hooks.
func Layout() LayoutHooks {
	l, _, _ := hooks.snapshot()
	return l
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	_, c, _ := hooks.snapshot()
	return c
}

// Server returns the installed server hooks.
func Server() ServerHooks {
	_, _, s := hooks.snapshot()
	return s
}

// Reset puts the no-op hooks back. Tests call it in t.Cleanup.
func Reset() {
	hooks.update(func() {
		hooks.layout = NoopLayoutHooks{}
		hooks.cache = NoopCacheHooks{}
		hooks.server = NoopServerHooks{}
	})
}
