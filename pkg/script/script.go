package script

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/listtree/pkg/errors"
)

// Kind is the operation name of an [Op].
type Kind string

const (
	OpInsert   Kind = "insert"
	OpDelete   Kind = "delete"
	OpReparent Kind = "reparent"
	OpVertical Kind = "vertical"
	OpReorder  Kind = "reorder"
)

// Kinds lists every supported operation.
var Kinds = []Kind{OpInsert, OpDelete, OpReparent, OpVertical, OpReorder}

// Script is a decoded edit script.
type Script struct {
	Root   string `toml:"root"`
	Render Render `toml:"render,omitempty"`
	Ops    []Op   `toml:"ops"`
}

// Render holds optional rendering preferences. Command-line flags take
// precedence over them.
type Render struct {
	Formats  []string `toml:"formats,omitempty"`
	ASCII    bool     `toml:"ascii,omitempty"`
	Detailed bool     `toml:"detailed,omitempty"`
}

// Op is a single tree operation. Which fields are used depends on Kind:
//
//	insert    node, parent, [child_index], [vertical_index]
//	delete    node
//	reparent  node, parent, [child_index]
//	vertical  node, vertical_index
//	reorder   node, child_index
type Op struct {
	Kind          Kind   `toml:"op"`
	Node          string `toml:"node"`
	Parent        string `toml:"parent,omitempty"`
	ChildIndex    *int   `toml:"child_index,omitempty"`
	VerticalIndex *int   `toml:"vertical_index,omitempty"`
}

// Int returns a pointer to v, for building Ops in code.
func Int(v int) *int { return &v }

// String formats the op on one line, e.g. "insert a under root".
func (o Op) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", o.Kind, o.Node)
	if o.Parent != "" {
		fmt.Fprintf(&b, " under %s", o.Parent)
	}
	if o.ChildIndex != nil {
		fmt.Fprintf(&b, " child_index=%d", *o.ChildIndex)
	}
	if o.VerticalIndex != nil {
		fmt.Fprintf(&b, " vertical_index=%d", *o.VerticalIndex)
	}
	return b.String()
}

// Parse decodes a script and validates it. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&s)
	if err != nil {
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "line %d", perr.Position.Line)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidScript, err, "decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScript, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks everything that can be checked without running the
// script: labels, required fields, index signs and label references.
// Tree-dependent constraints are checked by Apply.
func (s *Script) Validate() error {
	if err := errors.ValidateLabel(s.Root); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScript, err, "root")
	}

	known := map[string]bool{s.Root: true}
	for i, op := range s.Ops {
		if err := op.validate(known); err != nil {
			return opError(i, op, err)
		}
	}
	return nil
}

func (o Op) validate(known map[string]bool) error {
	if !slices.Contains(Kinds, o.Kind) {
		return fmt.Errorf("unknown op %q", o.Kind)
	}
	if err := errors.ValidateLabel(o.Node); err != nil {
		return fmt.Errorf("node: %w", err)
	}

	switch o.Kind {
	case OpInsert:
		if known[o.Node] {
			return fmt.Errorf("label %q already used", o.Node)
		}
	default:
		if !known[o.Node] {
			return fmt.Errorf("unknown node %q", o.Node)
		}
	}

	needsParent := o.Kind == OpInsert || o.Kind == OpReparent
	switch {
	case needsParent && o.Parent == "":
		return fmt.Errorf("parent is required")
	case needsParent && !known[o.Parent]:
		return fmt.Errorf("unknown parent %q", o.Parent)
	case !needsParent && o.Parent != "":
		return fmt.Errorf("parent is not used by %s", o.Kind)
	}

	switch o.Kind {
	case OpVertical:
		if o.VerticalIndex == nil {
			return fmt.Errorf("vertical_index is required")
		}
	case OpReorder:
		if o.ChildIndex == nil {
			return fmt.Errorf("child_index is required")
		}
	}
	if o.ChildIndex != nil && *o.ChildIndex < 0 {
		return fmt.Errorf("child_index %d is negative", *o.ChildIndex)
	}
	if o.VerticalIndex != nil && *o.VerticalIndex < 0 {
		return fmt.Errorf("vertical_index %d is negative", *o.VerticalIndex)
	}

	if o.Kind == OpInsert {
		known[o.Node] = true
	}
	return nil
}

func opError(i int, op Op, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidScript, err, "op %d (%s)", i+1, op.Kind)
}
