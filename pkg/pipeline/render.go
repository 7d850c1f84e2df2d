package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/listtree/pkg/cache"
	"github.com/matzehuels/listtree/pkg/observability"
	"github.com/matzehuels/listtree/pkg/render"
	"github.com/matzehuels/listtree/pkg/render/dot"
	"github.com/matzehuels/listtree/pkg/render/text"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// RenderWithCacheInfo generates artifacts for every requested format. The
// bool result reports whether every Graphviz artifact came from the cache;
// it is false when no Graphviz format was requested.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l snapshot.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, hit, err := r.render(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return artifacts, hit, nil
}

// Render is RenderWithCacheInfo without the cache information.
func (r *Runner) Render(ctx context.Context, l snapshot.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, l snapshot.Layout, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	src := dot.ToDOT(l, opts.DOTOptions())
	gv := &graphvizJob{runner: r, opts: opts, src: src, hash: cache.Hash([]byte(src)), done: map[string][]byte{}}
	allHit := opts.NeedsGraphviz()

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			data = []byte(text.Render(l, opts.TextOptions()))
		case FormatJSON:
			data, err = snapshot.Marshal(l)
		case FormatDOT:
			data = []byte(src)
		case FormatSVG, FormatPNG, FormatPDF:
			var hit bool
			data, hit, err = gv.artifact(ctx, format)
			allHit = allHit && hit
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, allHit, nil
}

// graphvizJob produces Graphviz artifacts for one DOT source. PNG and PDF
// are converted from the SVG, which is rendered at most once per job.
type graphvizJob struct {
	runner *Runner
	opts   Options
	src    string
	hash   string
	done   map[string][]byte
}

func (j *graphvizJob) artifact(ctx context.Context, format string) ([]byte, bool, error) {
	if data, ok := j.done[format]; ok {
		return data, true, nil
	}

	c := j.runner.Cache
	hooks := observability.Cache()
	key := j.runner.Keyer.ArtifactKey(j.hash, j.opts.ArtifactKeyOpts(format))

	if !j.opts.Refresh {
		if data, hit, err := c.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, format)
			j.done[format] = data
			return data, true, nil
		}
		hooks.OnCacheMiss(ctx, format)
	}

	data, err := j.produce(ctx, format)
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		j.opts.Logger.Warn("cache write failed", "format", format, "error", err)
	} else {
		hooks.OnCacheSet(ctx, format, len(data))
	}
	j.done[format] = data
	return data, false, nil
}

func (j *graphvizJob) produce(ctx context.Context, format string) ([]byte, error) {
	if format == FormatSVG {
		j.opts.Logger.Debug("rendering svg", "dot_bytes", len(j.src))
		return dot.RenderSVG(ctx, j.src)
	}

	svg, _, err := j.artifact(ctx, FormatSVG)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return render.ToPNG(ctx, svg, j.opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	}
	return nil, fmt.Errorf("unsupported graphviz format: %s", format)
}
