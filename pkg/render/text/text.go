// Package text renders a diagram snapshot with box-drawing characters.
//
// Every tree row becomes one output line holding the node marker, and a
// link line between consecutive rows carries the connector segments. Lane
// l maps to column 2l, so lanes stay one blank column apart:
//
//	●    root
//	├─┐
//	● │  a
//	  │
//	  ●  b
package text

import (
	"io"
	"strings"

	"github.com/matzehuels/listtree/pkg/snapshot"
)

// Options configures text rendering.
type Options struct {
	// ASCII draws with "|", "-", "+" and "o" instead of box-drawing runes.
	ASCII bool
	// HideLabels omits the label column.
	HideLabels bool
}

// Line is one line of rendered output.
type Line struct {
	// Diagram is the drawing, padded to the diagram width.
	Diagram string
	// Label is the node label, empty on link lines.
	Label string
	// Row is the tree row drawn on this line, or -1 for a link line.
	Row int
}

// String joins the drawing and the label.
func (l Line) String() string {
	if l.Label == "" {
		return strings.TrimRight(l.Diagram, " ")
	}
	return l.Diagram + "  " + l.Label
}

const (
	up = 1 << iota
	down
	left
	right
)

var unicodeGlyphs = map[int]rune{
	up:                       '│',
	down:                     '│',
	up | down:                '│',
	left:                     '─',
	right:                    '─',
	left | right:             '─',
	up | right:               '└',
	up | left:                '┘',
	down | right:             '┌',
	down | left:              '┐',
	up | down | right:        '├',
	up | down | left:         '┤',
	left | right | down:      '┬',
	left | right | up:        '┴',
	up | down | left | right: '┼',
}

func glyph(bits int, ascii bool) rune {
	switch {
	case bits == 0:
		return ' '
	case !ascii:
		return unicodeGlyphs[bits]
	case bits&(left|right) == 0:
		return '|'
	case bits&(up|down) == 0:
		return '-'
	default:
		return '+'
	}
}

// Lines renders l line by line.
func Lines(l snapshot.Layout, opts Options) []Line {
	if len(l.Nodes) == 0 {
		return nil
	}
	rows := max(l.Rows, len(l.Nodes))
	width := 2*max(l.Lanes, 1) - 1
	height := 2*rows - 1

	cells := make([][]int, height)
	for i := range cells {
		cells[i] = make([]int, width)
	}
	heads := make([]int, rows)
	for i := range heads {
		heads[i] = -1
	}

	for _, n := range l.Nodes {
		if n.Row >= 0 && n.Row < rows {
			heads[n.Row] = 2 * n.Lane
		}
		for _, s := range n.Segments {
			line := 2*s.Start.Row - 1
			from, to := 2*s.End.Lane, 2*s.Start.Lane
			cells[2*s.Start.Row][to] |= up
			cells[2*s.End.Row][from] |= down
			switch {
			case from == to:
				cells[line][from] |= up | down
			case from < to:
				cells[line][from] |= up | right
				for c := from + 1; c < to; c++ {
					cells[line][c] |= left | right
				}
				cells[line][to] |= left | down
			default:
				cells[line][from] |= up | left
				for c := to + 1; c < from; c++ {
					cells[line][c] |= left | right
				}
				cells[line][to] |= right | down
			}
		}
	}

	marker := '●'
	if opts.ASCII {
		marker = 'o'
	}

	out := make([]Line, 0, height)
	for i, bits := range cells {
		runes := make([]rune, width)
		for c, b := range bits {
			runes[c] = glyph(b, opts.ASCII)
		}
		line := Line{Row: -1}
		if i%2 == 0 {
			line.Row = i / 2
			if h := heads[line.Row]; h >= 0 && h < width {
				runes[h] = marker
			}
			if !opts.HideLabels && line.Row < len(l.Nodes) {
				line.Label = l.Nodes[line.Row].Label
			}
		}
		line.Diagram = string(runes)
		out = append(out, line)
	}
	return out
}

// Render renders l as a string with one trailing newline per line.
func Render(l snapshot.Layout, opts Options) string {
	var b strings.Builder
	for _, line := range Lines(l, opts) {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Write renders l to w.
func Write(w io.Writer, l snapshot.Layout, opts Options) error {
	_, err := io.WriteString(w, Render(l, opts))
	return err
}
