package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/laneflow/laneflow/pkg/cache"
	"github.com/laneflow/laneflow/pkg/errors"
	"github.com/laneflow/laneflow/pkg/layout"
	"github.com/laneflow/laneflow/pkg/observability"
	"github.com/laneflow/laneflow/pkg/process"
	"github.com/laneflow/laneflow/pkg/render/dot"
	"github.com/laneflow/laneflow/pkg/render/drawio"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
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

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	g, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Graph = g
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ProcedureCount = len(g.Procedures())
	result.Stats.ItemCount = g.ItemCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.ParseHit = parseHit

	// Compute graph hash for cache keys and API responses
	if graphData, err := process.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	opts.Logger.Info("parsed triples",
		"procedures", len(g.Procedures()),
		"items", g.ItemCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ParseTime)

	// Apply the procedure filter if requested
	workGraph, err := r.PrepareGraph(g, opts)
	if err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, workGraph, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"pools", len(l.Pools),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, workGraph, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo reconstructs the process graph with caching and
// returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (*process.Graph, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(cache.Hash([]byte(opts.Input)))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := process.ReadGraph(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil // Cache hit
			}
			// If deserialization fails, fall through to reparse
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	// Parse
	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(opts.Input))
	g := process.BuildText(opts.Input)
	observability.Pipeline().OnParseComplete(ctx, len(g.Procedures()), g.ItemCount(), time.Since(start), nil)

	// Cache the result
	if data, err := process.MarshalGraph(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}

	return g, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (*process.Graph, error) {
	g, _, err := r.ParseWithCacheInfo(ctx, opts)
	return g, err
}

// GenerateLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g *process.Graph, opts Options) (layout.Layout, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	// Compute cache key
	graphData, _ := process.MarshalGraph(g)
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := layout.UnmarshalLayout(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, g.ItemCount())
	l := layout.Compute(g, opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, len(l.Pools), time.Since(start), nil)

	// Cache the result
	if data, err := layout.MarshalLayout(l); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return l, false, nil // Cache miss
}

// GenerateLayout is a convenience wrapper that calls GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g *process.Graph, opts Options) (layout.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, g *process.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := layout.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	cacheKeyHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderFromLayout(l, g, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, g *process.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, g, opts)
	return artifacts, err
}

// PrepareGraph applies the procedure filter if opts.Procedures is set.
// Returns the original graph if no filter is requested.
func (r *Runner) PrepareGraph(g *process.Graph, opts Options) (*process.Graph, error) {
	if len(opts.Procedures) == 0 {
		return g, nil
	}
	for _, name := range opts.Procedures {
		if _, ok := g.Procedure(name); !ok {
			return nil, errors.New(errors.ErrCodeInvalidProcedure, "unknown procedure: %q", name)
		}
	}
	filtered := g.Filter(opts.Procedures)
	r.Logger.Debug("filtered procedures",
		"requested", opts.Procedures,
		"items", filtered.ItemCount())
	return filtered, nil
}

// RenderFromLayout generates all requested output formats from a layout.
func RenderFromLayout(l layout.Layout, g *process.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		data, err := renderFormat(l, g, format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l layout.Layout, g *process.Graph, format string) ([]byte, error) {
	switch format {
	case FormatDrawio:
		return drawio.Emit(g, l)
	case FormatJSON:
		return layout.MarshalLayout(l)
	case FormatDOT:
		return []byte(dot.ToDOT(g)), nil
	case FormatSVG:
		return dot.RenderSVG(dot.ToDOT(g))
	case FormatPNG:
		return dot.RenderPNG(dot.ToDOT(g))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
