// Package pipeline provides the script → layout → render pipeline of
// listtree.
//
// Every entry point (the render and layout commands, the interactive
// editor's export and the viewer server) goes through a [Runner], so they
// share defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Parse an edit script and apply it to a new tree
//  2. Layout: Lay the tree out with package diagram and capture a snapshot
//  3. Render: Produce text, JSON, DOT, SVG, PNG or PDF output
//
// Each stage can be run on its own. Layouts are cached by script hash and
// Graphviz artifacts by DOT hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ScriptPath: "tree.toml",
//	    Formats:    []string{"text", "svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/listtree/pkg/cache"
	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/render/dot"
	"github.com/matzehuels/listtree/pkg/render/text"
	"github.com/matzehuels/listtree/pkg/script"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultLaneSep and DefaultRowSep are the Graphviz cell sizes in points.
	DefaultLaneSep = dot.DefaultLaneSep
	DefaultRowSep  = dot.DefaultRowSep
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is used when neither flags nor the script choose one.
const DefaultFormat = FormatText

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// Extension returns the file extension for a format.
func Extension(format string) string {
	if format == FormatText {
		return "txt"
	}
	return format
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for the viewer API.
type Options struct {
	// Build options. Source takes precedence over ScriptPath.
	ScriptPath string `json:"script_path,omitempty"`
	Source     []byte `json:"-"`
	Refresh    bool   `json:"refresh,omitempty"` // Bypass the cache

	// Render options
	Formats    []string `json:"formats,omitempty"`
	ASCII      bool     `json:"ascii,omitempty"`
	HideLabels bool     `json:"hide_labels,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // Index details in DOT labels
	LaneSep    float64  `json:"lane_sep,omitempty"`
	RowSep     float64  `json:"row_sep,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Script is the parsed edit script.
	Script *script.Script

	// Layout is the computed diagram.
	Layout snapshot.Layout

	// LayoutHash is the content hash of the layout JSON.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Rows       int
	Lanes      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether every Graphviz artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list. Blank entries are
// dropped and duplicates removed.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks that a script source is set.
func (o *Options) ValidateForBuild() error {
	if len(o.Source) == 0 && o.ScriptPath == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "script path or source is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ApplyScript fills unset render options from the script's [render] table.
func (o *Options) ApplyScript(s *script.Script) {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(s.Render.Formats)
	}
	o.ASCII = o.ASCII || s.Render.ASCII
	o.Detailed = o.Detailed || s.Render.Detailed
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.LaneSep == 0 {
		o.LaneSep = DefaultLaneSep
	}
	if o.RowSep == 0 {
		o.RowSep = DefaultRowSep
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates render options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.LaneSep < 0 || o.RowSep < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "lane and row separation must be positive")
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

// NeedsGraphviz reports whether any requested format goes through Graphviz.
func (o *Options) NeedsGraphviz() bool {
	return slices.ContainsFunc(o.Formats, func(f string) bool {
		return f == FormatSVG || f == FormatPNG || f == FormatPDF
	})
}

// TextOptions returns the options for the text renderer.
func (o *Options) TextOptions() text.Options {
	return text.Options{ASCII: o.ASCII, HideLabels: o.HideLabels}
}

// DOTOptions returns the options for the DOT renderer.
func (o *Options) DOTOptions() dot.Options {
	return dot.Options{LaneSep: o.LaneSep, RowSep: o.RowSep, Detailed: o.Detailed}
}

// ArtifactKeyOpts returns cache key options for a Graphviz artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// scriptLabel names the script in logs and hooks.
func (o *Options) scriptLabel() string {
	if len(o.Source) > 0 {
		return "<inline>"
	}
	return o.ScriptPath
}
