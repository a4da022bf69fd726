package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/dsl"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it does not keep
// results. Multiple goroutines can use the same Runner with different
// options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is applied to every cache write. Zero keeps entries until evicted.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer means DefaultKeyer and a nil
// cache disables caching.
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

// Execute runs the complete parse → solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{SourceHash: cache.Hash([]byte(opts.Source))}

	// Stage 1: Parse
	parseStart := time.Now()
	doc, err := Parse(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.ParseTime = time.Since(parseStart)

	r.Logger.Debug("parsed layout",
		"file", opts.Filename,
		"surfaces", len(doc.Surfaces()),
		"flags", doc.Flags(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Solve
	solveStart := time.Now()
	layout, hit, err := r.SolveWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.Surfaces = len(layout.Surfaces())
	result.Stats.Constraints = len(layout.Constraints)
	for _, e := range layout.Constraints {
		if e.Dropped {
			result.Stats.Dropped++
		}
	}
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("solved layout",
		"surfaces", result.Stats.Surfaces,
		"constraints", result.Stats.Constraints,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo solves doc for the options' size and flags and reports
// whether the layout came from the cache.
//
// Dropped constraints are logged and the degraded layout is returned, unless
// opts.Strict is set.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, doc *dsl.Document, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSolve(); err != nil {
		return graph.Layout{}, false, err
	}
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}

	key := r.Keyer.LayoutKey(cache.Hash([]byte(opts.Source)), opts.LayoutKeyOpts())

	var layout graph.Layout
	hit := false
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				layout, hit = cached, true
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
	}

	if hit {
		observability.Cache().OnCacheHit(ctx, "layout")
		layout.Style = opts.Style
	} else {
		observability.Cache().OnCacheMiss(ctx, "layout")
		var err error
		layout, err = Solve(ctx, doc, opts)
		if err != nil {
			return graph.Layout{}, false, err
		}
		if data, err := graph.MarshalLayout(layout); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
				r.Logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}

	if layout.Degraded() {
		if opts.Strict {
			return graph.Layout{}, hit, errs.New(errs.ErrCodeUnsatisfiable, "layout is over-constrained: %s", droppedSummary(layout))
		}
		r.Logger.Warn("solver dropped constraints", "dropped", droppedSummary(layout))
	}
	return layout, hit, nil
}

// Solve lays doc out once in a fresh Session. A layout the solver had to
// degrade is returned without error; callers check Layout.Degraded.
func Solve(ctx context.Context, doc *dsl.Document, opts Options) (graph.Layout, error) {
	s, err := NewSession(doc, opts.Width, opts.Height,
		WithSessionLogger(opts.Logger),
		WithSessionStyle(opts.Style))
	if err != nil {
		return graph.Layout{}, err
	}
	if err := s.SetFlags(opts.Flags); err != nil {
		return graph.Layout{}, err
	}
	layout, err := s.Update(ctx)
	if err != nil && !(errs.Is(err, errs.ErrCodeUnsatisfiable) && layout.ID != "") {
		return graph.Layout{}, err
	}
	return layout, nil
}

func droppedSummary(l graph.Layout) string {
	var first string
	n := 0
	for _, e := range l.Constraints {
		if e.Dropped {
			if n == 0 {
				first = e.Expr
			}
			n++
		}
	}
	if n == 1 {
		return first
	}
	return fmt.Sprintf("%s and %d more", first, n-1)
}

// Solve is a convenience wrapper that discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, doc *dsl.Document, opts Options) (graph.Layout, error) {
	l, _, err := r.SolveWithCacheInfo(ctx, doc, opts)
	return l, err
}

// RenderWithCacheInfo renders artifacts with caching and reports whether all
// of them came from the cache. An unset style falls back to the layout's.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if opts.Style == "" {
		opts.Style = layout.Style
	}
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, ok, err := r.Cache.Get(ctx, key)
		if err != nil || !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, layout, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
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
