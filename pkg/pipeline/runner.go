package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it does not keep
// results between runs. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Run loads g into a fresh engine, computes the layout selected by opts
// (from the cache when possible) and writes the positions into the engine.
// Cancellation is honored between stages.
func (r *Runner) Run(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 1: Load
	loadStart := time.Now()
	loaded, err := graph.Load(g)
	if err != nil {
		return nil, err
	}
	res := &Result{Graph: g, Loaded: loaded}
	res.Stats.LoadTime = time.Since(loadStart)

	if data, err := graph.MarshalGraph(g); err == nil {
		res.GraphHash = cache.Hash(data)
	}

	r.Logger.Debug("loaded graph",
		"nodes", loaded.Engine.NodeCount(),
		"edges", loaded.Engine.EdgeCount(),
		"duration", res.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, pos, hit, err := r.layoutWithCacheInfo(ctx, loaded, res.GraphHash, opts)
	if err != nil {
		return nil, err
	}
	applyPositions(loaded, &l, pos)

	l.RunID = uuid.NewString()
	l.GraphHash = res.GraphHash
	l.Stats.CacheHit = hit
	res.Layout = l
	res.Positions = pos
	res.Stats.LayoutTime = time.Since(layoutStart)
	res.Stats.CacheHit = hit

	r.Logger.Info("computed layout",
		"algorithm", opts.Algorithm,
		"nodes", l.Stats.Nodes,
		"edges", l.Stats.Edges,
		"placed", l.Stats.Placed,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	return res, nil
}

// layoutWithCacheInfo returns the layout for loaded, computing and caching it
// on a miss.
func (r *Runner) layoutWithCacheInfo(ctx context.Context, loaded *graph.Loaded, graphHash string, opts Options) (graph.Layout, []float32, bool, error) {
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, ok := usableLayout(data, loaded, opts.Algorithm); ok {
				return cached, cachedPositions(cached), true, nil
			}
			r.Logger.Debug("discarding stale cached layout", "key", cacheKey)
		}
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, opts.Algorithm, loaded.Engine.NodeCount())
	start := time.Now()
	l, pos, err := GenerateLayout(loaded, opts)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, opts.Algorithm, l.Stats.Placed, elapsed, err)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}
	l.Stats.DurationMicros = elapsed.Microseconds()

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		}
	}
	return l, pos, false, nil
}

// usableLayout decodes a cached layout and checks that it describes the
// loaded graph node for node.
func usableLayout(data []byte, loaded *graph.Loaded, algorithm string) (graph.Layout, bool) {
	l, err := graph.UnmarshalLayout(data)
	if err != nil || l.Algorithm != algorithm || l.NodeBound != len(loaded.Keys) || len(l.Nodes) != len(loaded.Keys) {
		return graph.Layout{}, false
	}
	for i, n := range l.Nodes {
		if n.ID != loaded.Keys[i] {
			return graph.Layout{}, false
		}
	}
	return l, true
}

func cachedPositions(l graph.Layout) []float32 {
	if l.Algorithm == graph.AlgorithmBubble {
		return nil
	}
	return l.Positions()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
