package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/odex-dev/odex/pkg/cache"
	"github.com/odex-dev/odex/pkg/diagram"
	"github.com/odex-dev/odex/pkg/edm"
	"github.com/odex-dev/odex/pkg/observability"
	"github.com/odex-dev/odex/pkg/odata"
	"github.com/odex-dev/odex/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, client, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Client *odata.Client
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
		Client: odata.NewClient(c, keyer, logger),
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	observability.Pipeline().OnFetchStart(ctx, opts.ServiceURL)
	doc, metadataHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		observability.Pipeline().OnFetchComplete(ctx, opts.ServiceURL, 0, time.Since(fetchStart), err)
		return nil, fmt.Errorf("fetch: %w", err)
	}
	observability.Pipeline().OnFetchComplete(ctx, opts.ServiceURL, len(doc.EntityTypes()), time.Since(fetchStart), nil)
	result.Document = doc
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.EntityCount = len(doc.EntityTypes())
	result.Stats.RelationshipCount = len(doc.Relationships())
	result.CacheInfo.MetadataHit = metadataHit

	r.Logger.Info("fetched metadata",
		"version", doc.Version,
		"entities", result.Stats.EntityCount,
		"relationships", result.Stats.RelationshipCount,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, result.Stats.EntityCount)
	d, layoutHit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.SkippedEdges = len(d.Skipped)
	result.CacheInfo.LayoutHit = layoutHit

	if data, err := json.Marshal(d); err == nil {
		result.DiagramHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"nodes", len(d.Nodes),
		"edges", len(d.Edges),
		"skipped", len(d.Skipped),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo retrieves the EDM model and reports whether the raw
// metadata came from cache. A MetadataFile option short-circuits the network
// entirely and never touches the cache.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*edm.Document, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if opts.MetadataFile != "" {
		data, err := os.ReadFile(opts.MetadataFile)
		if err != nil {
			return nil, false, fmt.Errorf("read metadata file: %w", err)
		}
		doc, err := edm.ParseBytes(data)
		return doc, false, err
	}

	svc, err := odata.ParseServiceURL(opts.ServiceURL)
	if err != nil {
		return nil, false, err
	}

	// The client stores fetched metadata under the same key, so a probe here
	// doubles as the stage's hit report without a second cache write.
	hit := false
	if !opts.Refresh {
		_, hit, _ = r.Cache.Get(ctx, r.Keyer.MetadataKey(svc.Root))
		if hit {
			observability.Cache().OnCacheHit(ctx, "metadata")
		} else {
			observability.Cache().OnCacheMiss(ctx, "metadata")
		}
	}

	doc, err := r.Client.FetchMetadata(ctx, svc, opts.Refresh)
	if err != nil {
		return nil, false, err
	}
	return doc, hit, nil
}

// Fetch is a convenience wrapper that discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*edm.Document, error) {
	doc, _, err := r.FetchWithCacheInfo(ctx, opts)
	return doc, err
}

// LayoutWithCacheInfo builds the entity diagram and computes connection
// points, with caching keyed by topology and layout options.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *edm.Document, opts Options) (diagram.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Result{}, false, err
	}
	r.applyLogger(&opts)

	nodes, edges := BuildDiagram(doc, opts)

	topology, _ := json.Marshal(struct {
		Nodes []diagram.Node `json:"nodes"`
		Edges []diagram.Edge `json:"edges"`
	}{nodes, edges})
	cacheKey := r.Keyer.LayoutKey(cache.Hash(topology), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached diagram.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	engine := diagram.New(opts.EngineConfig())
	d, err := engine.Layout(nodes, edges)
	if err != nil {
		return diagram.Result{}, false, err
	}

	if data, err := json.Marshal(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return d, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc *edm.Document, opts Options) (diagram.Result, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return d, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every requested format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d diagram.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	diagramData, err := json.Marshal(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	diagramHash := cache.Hash(diagramData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := renderArtifacts(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d diagram.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// renderArtifacts produces every requested format from one diagram.
func renderArtifacts(ctx context.Context, d diagram.Result, opts Options) (map[string][]byte, error) {
	renderOpts := render.Options{Detailed: opts.Detailed, RankDir: opts.RankDir}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := render.ToJSON(d)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(render.ToDOT(d, renderOpts))
		case FormatSVG:
			data, err := render.RenderSVG(ctx, render.ToDOT(d, renderOpts))
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(ctx, render.ToDOT(d, renderOpts))
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
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
