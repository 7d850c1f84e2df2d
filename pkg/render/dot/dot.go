package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// Default spacing in points.
const (
	DefaultLaneSep = 36.0
	DefaultRowSep  = 36.0
)

// Options configures DOT generation.
type Options struct {
	// LaneSep and RowSep are the distances between lanes and rows in
	// points. Zero selects the defaults.
	LaneSep float64
	RowSep  float64

	// Detailed adds the vertical and child index to node labels.
	Detailed bool
}

func (o Options) withDefaults() Options {
	if o.LaneSep <= 0 {
		o.LaneSep = DefaultLaneSep
	}
	if o.RowSep <= 0 {
		o.RowSep = DefaultRowSep
	}
	return o
}

// ToDOT converts a layout to DOT with every point pinned to its cell.
// Branch heads are labelled boxes, intermediate chain connectors are
// points. Edges run from each connector to its parent connector.
func ToDOT(l snapshot.Layout, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.08,0.02\", width=0, height=0];\n")
	buf.WriteString("  edge [dir=none];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmtPos(n.Position(), opts),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", headID(n), strings.Join(attrs, ", "))
		for i, s := range n.Segments[:max(len(n.Segments)-1, 0)] {
			fmt.Fprintf(&buf, "  %q [shape=point, width=0.04, %s];\n", pointID(n, i), fmtPos(s.End, opts))
		}
	}

	buf.WriteString("\n")
	ids := make(map[diagram.Point]string, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.Position()] = headID(n)
	}
	for _, n := range l.Nodes {
		from := headID(n)
		for i, s := range n.Segments {
			to := ids[s.End]
			if i < len(n.Segments)-1 {
				to = pointID(n, i)
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
			from = to
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func headID(n snapshot.Node) string {
	return fmt.Sprintf("n%d", n.ID)
}

func pointID(n snapshot.Node, i int) string {
	return fmt.Sprintf("n%d_%d", n.ID, i)
}

func fmtLabel(n snapshot.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\nvi: %d, ci: %d", n.Label, n.VerticalIndex, n.ChildIndex)
}

// fmtPos pins p. Graphviz y grows upwards, rows grow downwards.
func fmtPos(p diagram.Point, opts Options) string {
	x := float64(p.Lane) * opts.LaneSep
	y := float64(-p.Row) * opts.RowSep
	return fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y))
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the neato engine so that pinned
// positions are kept.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
