// Package dot renders a diagram snapshot as Graphviz DOT and SVG.
//
// Unlike a regular node-link drawing, the geometry is not left to
// Graphviz: every branch head and chain connector is pinned at its lane
// and row with a pos attribute, and the neato engine only draws the
// straight segments between them. The SVG therefore shows exactly the
// layout computed by package diagram.
//
// # Usage
//
//	src := dot.ToDOT(layout, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion of the SVG is done by package render
// and requires librsvg (rsvg-convert).
package dot
