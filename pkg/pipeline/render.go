package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/render/nodelink"
)

// previewEngine names the Graphviz engine in artifact cache keys.
const previewEngine = "neato"

// PreviewOptions configures rendering of a computed layout.
type PreviewOptions struct {
	// Format is one of [nodelink.Formats]. Default: svg
	Format string
	// Labels draws node labels.
	Labels bool
}

// Preview renders the layout of res in the requested format. Artifacts are
// cached by the content of the layout, so re-rendering an unchanged layout
// is a cache hit. The second return value reports whether it was.
func (r *Runner) Preview(ctx context.Context, res *Result, opts PreviewOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = nodelink.FormatSVG
	}
	dot, err := nodelink.ToDOT(res.Graph, res.Layout, nodelink.Options{Labels: opts.Labels})
	if err != nil {
		return nil, false, err
	}
	if opts.Format == nodelink.FormatDOT {
		return []byte(dot), false, nil
	}

	cacheKey := r.Keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{
		Format: opts.Format,
		Engine: previewEngine,
		Labels: opts.Labels,
	})
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		return data, true, nil
	}

	start := time.Now()
	data, err := nodelink.Render(ctx, dot, opts.Format)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Info("rendered preview",
		"format", opts.Format,
		"bytes", len(data),
		"duration", time.Since(start))

	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
	}
	return data, false, nil
}

// PreviewLayout renders a stored layout of g without running the pipeline.
func (r *Runner) PreviewLayout(ctx context.Context, g graph.Graph, l graph.Layout, opts PreviewOptions) ([]byte, bool, error) {
	return r.Preview(ctx, &Result{Graph: g, Layout: l}, opts)
}
