// Package render converts rendered diagrams between output formats.
//
// The renderers themselves live in subpackages:
//
//   - [text]: box-drawing diagrams for terminals
//   - [dot]: Graphviz DOT with pinned positions, and SVG via go-graphviz
//
// [ToPDF] and [ToPNG] convert an SVG produced by [dot] using the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(layout, dot.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [text]: github.com/matzehuels/listtree/pkg/render/text
// [dot]: github.com/matzehuels/listtree/pkg/render/dot
package render
