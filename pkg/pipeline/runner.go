package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/listtree/pkg/cache"
	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/observability"
	"github.com/matzehuels/listtree/pkg/script"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
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

// Execute runs the complete script → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	layoutStart := time.Now()
	s, layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	opts.ApplyScript(s)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Script: s,
		Layout: layout,
		Stats: Stats{
			NodeCount:  len(layout.Nodes),
			Rows:       layout.Rows,
			Lanes:      layout.Lanes,
			LayoutTime: time.Since(layoutStart),
		},
		CacheInfo: CacheInfo{LayoutHit: layoutHit},
	}
	if data, err := snapshot.Marshal(layout); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"rows", layout.Rows,
		"lanes", layout.Lanes,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
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

// LoadScript reads and parses the script named by opts.
func (r *Runner) LoadScript(opts Options) (*script.Script, []byte, error) {
	src := opts.Source
	if len(src) == 0 {
		data, err := os.ReadFile(opts.ScriptPath)
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", opts.ScriptPath)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", opts.ScriptPath, err)
		}
		src = data
	}
	s, err := script.Parse(src)
	if err != nil {
		return nil, nil, err
	}
	return s, src, nil
}

// Build applies a parsed script to a new tree.
func (r *Runner) Build(ctx context.Context, s *script.Script, opts Options) (*listtree.Tree, error) {
	r.applyLogger(&opts)
	name := opts.scriptLabel()

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, name)
	start := time.Now()
	tree, err := s.Build(listtree.WithLogger(opts.Logger))
	nodes := 0
	if tree != nil {
		nodes = tree.Len()
	}
	hooks.OnBuildComplete(ctx, name, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("built tree", "script", name, "ops", len(s.Ops), "nodes", nodes)
	return tree, nil
}

// LayoutWithCacheInfo parses the script, then returns its layout from the
// cache or by building the tree and laying it out.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, opts Options) (*script.Script, snapshot.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, snapshot.Layout{}, false, err
	}

	s, src, err := r.LoadScript(opts)
	if err != nil {
		return nil, snapshot.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(cache.Hash(src))
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := snapshot.Unmarshal(data); err == nil {
				hooks.OnCacheHit(ctx, "layout")
				return s, l, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	tree, err := r.Build(ctx, s, opts)
	if err != nil {
		return nil, snapshot.Layout{}, false, err
	}
	l := Snapshot(tree, opts.Logger)

	if data, err := snapshot.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return s, l, false, nil
}

// Layout is LayoutWithCacheInfo without the script and cache information.
func (r *Runner) Layout(ctx context.Context, opts Options) (snapshot.Layout, error) {
	_, l, _, err := r.LayoutWithCacheInfo(ctx, opts)
	return l, err
}

// Snapshot lays out tree once and captures the result.
func Snapshot(tree *listtree.Tree, logger *log.Logger) snapshot.Layout {
	e := diagram.New(tree, diagram.WithLogger(logger))
	defer e.Close()
	return snapshot.FromEngine(e, nil)
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
