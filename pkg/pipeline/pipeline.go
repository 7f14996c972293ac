// Package pipeline runs atlas layouts end to end.
//
// This package implements the load → layout → preview flow shared by the
// CLI and the HTTP server, so both entry points cache, log and report the
// same way.
//
// # Stages
//
//  1. Load: validate a graph document and load it into a fresh engine
//  2. Layout: run one core algorithm over the engine and write the
//     resulting positions back into it
//  3. Preview (optional): render the positioned graph with Graphviz
//
// Layouts are cached by the content hash of the graph document together
// with the algorithm, root and the algorithm's configuration section.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Run(ctx, g, pipeline.Options{Algorithm: "radial"})
//	if err != nil {
//	    return err
//	}
//	hits, _ := res.InRadius(0, 0, 100)
//
// A [Runner] holds no per-run state and may be shared by goroutines; every
// run gets its own engine.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
)

// DefaultAlgorithm is the layout used when Options.Algorithm is empty.
const DefaultAlgorithm = graph.AlgorithmRadial

// Options configures one pipeline run.
type Options struct {
	// Algorithm is one of [graph.Algorithms]. Default: radial
	Algorithm string `json:"algorithm,omitempty"`

	// Root is the document key of the root node for hierarchical layouts.
	// Empty means detect the root. Ignored by the community layout.
	Root string `json:"root,omitempty"`

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Config holds the per-algorithm settings. Nil means [config.Default].
	Config *config.Config `json:"-"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the algorithm and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if !graph.ValidAlgorithm(o.Algorithm) {
		return errors.New(errors.ErrCodeInvalidAlgorithm, "unknown layout algorithm %q", o.Algorithm)
	}
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// AlgorithmConfig returns the configuration section that drives the
// selected algorithm.
func (o *Options) AlgorithmConfig() any {
	cfg := o.Config
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	switch o.Algorithm {
	case graph.AlgorithmCommunity:
		return cfg.Community
	case graph.AlgorithmCodebase:
		return cfg.Codebase
	case graph.AlgorithmBubble:
		return cfg.Bubble
	default:
		return cfg.Tree
	}
}

// LayoutKeyOpts returns cache key options for the layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	root := o.Root
	if o.Algorithm == graph.AlgorithmCommunity {
		root = ""
	}
	return cache.LayoutKeyOpts{
		Algorithm: o.Algorithm,
		Root:      root,
		Config:    o.AlgorithmConfig(),
	}
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Graph is the input document.
	Graph graph.Graph

	// Loaded is the engine the layout ran on, with the computed positions
	// written into it. Pinned nodes keep their document position.
	Loaded *graph.Loaded

	// GraphHash is the content hash of the document.
	GraphHash string

	// Layout is the layout document.
	Layout graph.Layout

	// Positions holds the layout as interleaved per-slot coordinates with
	// sentinels for unplaced nodes. Empty for bubble layouts.
	Positions []float32

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LoadTime   time.Duration
	LayoutTime time.Duration
	CacheHit   bool
}
