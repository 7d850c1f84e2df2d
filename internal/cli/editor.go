package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/listtree/pkg/diagram"
	"github.com/matzehuels/listtree/pkg/errors"
	"github.com/matzehuels/listtree/pkg/listtree"
	"github.com/matzehuels/listtree/pkg/observe"
	"github.com/matzehuels/listtree/pkg/render/text"
	"github.com/matzehuels/listtree/pkg/script"
	"github.com/matzehuels/listtree/pkg/snapshot"
)

// =============================================================================
// Key bindings
// =============================================================================

type editorKeyMap struct {
	Up, Down, Top, Bottom key.Binding
	Add, Save, Quit       key.Binding
	Confirm, Cancel       key.Binding

	// Commands maps bindings to branch commands, in help order.
	Commands []commandBinding
}

type commandBinding struct {
	key.Binding
	cmd diagram.Command
}

var editorKeys = editorKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Commands: []commandBinding{
		{key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")), diagram.DecrementVerticalIndex},
		{key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")), diagram.IncrementVerticalIndex},
		{key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "earlier sibling")), diagram.DecrementChildIndex},
		{key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "later sibling")), diagram.IncrementChildIndex},
		{key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")), diagram.Delete},
	},
}

// command returns the branch command bound to msg.
func (k editorKeyMap) command(msg tea.KeyMsg) (diagram.Command, bool) {
	for _, b := range k.Commands {
		if key.Matches(msg, b.Binding) {
			return b.cmd, true
		}
	}
	return 0, false
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	out := []key.Binding{k.Up, k.Down}
	for _, b := range k.Commands {
		out = append(out, b.Binding)
	}
	return append(out, k.Add, k.Save, k.Quit)
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Top, k.Bottom, k.Confirm, k.Cancel}}
}

// inputKeys is the help shown while a label is being typed.
type inputKeys struct{ editorKeyMap }

func (k inputKeys) ShortHelp() []key.Binding { return []key.Binding{k.Confirm, k.Cancel} }

// =============================================================================
// editorModel - Interactive tree editor
// =============================================================================

// editorModel is the bubbletea model behind "listtree edit". The selection
// is a node rather than a row, so it follows the node when it moves.
type editorModel struct {
	tree   *listtree.Tree
	engine *diagram.Engine
	labels *observe.Projection[listtree.Node, string] // row labels in vertical order

	path  string // save destination
	ascii bool

	keys     editorKeyMap
	help     help.Model
	view     viewport.Model // diagram lines, two per row
	input    textinput.Model
	selected *listtree.Node
	adding   bool // reading a label for a new child

	status    string
	statusErr bool
	dirty     bool
	saved     bool
	quitArmed bool // q pressed once with unsaved changes
}

func newEditorModel(tree *listtree.Tree, engine *diagram.Engine, path string, ascii bool) editorModel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "label"
	input.CharLimit = errors.MaxLabelLength

	m := editorModel{
		tree:     tree,
		engine:   engine,
		labels:   observe.Project(tree.NodesByVerticalIndex(), nodeLabel),
		path:     path,
		ascii:    ascii,
		keys:     editorKeys,
		help:     help.New(),
		view:     viewport.New(80, 20),
		input:    input,
		selected: tree.Root(),
	}
	m.refresh()
	return m
}

func nodeLabel(n *listtree.Node) string {
	return fmt.Sprint(n.Data())
}

// close releases the projection. The engine is owned by the caller.
func (m editorModel) close() {
	m.labels.Close()
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.adding {
			m, cmd = m.updateInput(msg)
		} else {
			m, cmd = m.updateNormal(msg)
		}
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-8, 3)
		m.help.Width = msg.Width
	default:
		if m.adding {
			m.input, cmd = m.input.Update(msg)
		}
	}
	m.refresh()
	return m, cmd
}

func (m editorModel) updateNormal(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	if !key.Matches(msg, m.keys.Quit) {
		m.quitArmed = false
	}

	if cmd, ok := m.keys.command(msg); ok {
		return m.execute(cmd), nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty && !m.quitArmed {
			m.quitArmed = true
			return m.warn("unsaved changes: press q again to quit, s to save"), nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if vi := m.selected.VerticalIndex(); vi > 0 {
			m.selected = m.tree.At(vi - 1)
		}
	case key.Matches(msg, m.keys.Down):
		if vi := m.selected.VerticalIndex(); vi < m.tree.Len()-1 {
			m.selected = m.tree.At(vi + 1)
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = m.tree.Root()
	case key.Matches(msg, m.keys.Bottom):
		m.selected = m.tree.At(m.tree.Len() - 1)
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.status = ""
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Save):
		m = m.save()
	}
	return m, nil
}

// updateInput feeds keys to the label input until it is confirmed or
// cancelled.
func (m editorModel) updateInput(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.adding = false
		m.input.Blur()
		return m.addChild(m.input.Value()), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute runs a branch command on the selected node.
func (m editorModel) execute(cmd diagram.Command) editorModel {
	b := m.engine.Branch(m.selected)
	if b == nil || !b.CanExecute(cmd) {
		return m.warn(fmt.Sprintf("cannot %s %q", cmd, nodeLabel(m.selected)))
	}

	label := nodeLabel(m.selected)
	parent := m.selected.Parent()
	if err := b.Execute(cmd); err != nil {
		return m.fail(err)
	}
	if cmd == diagram.Delete {
		m.selected = parent
	}
	m.dirty = true
	return m.info(fmt.Sprintf("%s %q", cmd, label))
}

// addChild appends a child labelled label to the selected node, directly
// below the selected node's subtree.
func (m editorModel) addChild(label string) editorModel {
	if err := errors.ValidateLabel(label); err != nil {
		return m.fail(err)
	}
	if _, taken := script.Labels(m.tree)[label]; taken {
		return m.warn(fmt.Sprintf("label %q is already used", label))
	}

	parent := m.selected
	vi := parent.VerticalIndex()
	for _, d := range parent.Subtree() {
		vi = max(vi, d.VerticalIndex())
	}
	child, err := m.tree.Insert(parent, parent.NumChildren(), label, vi+1)
	if err != nil {
		return m.fail(err)
	}
	m.selected = child
	m.dirty = true
	return m.info(fmt.Sprintf("added %q under %q", label, nodeLabel(parent)))
}

func (m editorModel) save() editorModel {
	if err := script.FromTree(m.tree).WriteFile(m.path); err != nil {
		return m.fail(err)
	}
	m.dirty = false
	m.saved = true
	return m.info("saved " + m.path)
}

func (m editorModel) info(msg string) editorModel {
	m.status, m.statusErr = msg, false
	return m
}

func (m editorModel) warn(msg string) editorModel {
	m.status, m.statusErr = msg, true
	return m
}

func (m editorModel) fail(err error) editorModel {
	return m.warn(errors.UserMessage(err))
}

// refresh redraws the diagram into the viewport and scrolls the selected
// node's line into view.
func (m *editorModel) refresh() {
	m.view.SetContent(strings.Join(m.lines(), "\n"))

	line := 2 * m.selected.VerticalIndex()
	switch {
	case line < m.view.YOffset:
		m.view.SetYOffset(line)
	case line >= m.view.YOffset+m.view.Height:
		m.view.SetYOffset(line - m.view.Height + 1)
	}
}

// lines renders the diagram with the projected labels, highlighting the
// selected row.
func (m editorModel) lines() []string {
	layout := snapshot.FromEngine(m.engine, nodeLabel)
	selectedRow := m.selected.VerticalIndex()

	var out []string
	for _, l := range text.Lines(layout, text.Options{ASCII: m.ascii, HideLabels: true}) {
		if l.Row < 0 {
			out = append(out, "  "+editorDimStyle.Render(strings.TrimRight(l.Diagram, " ")))
			continue
		}
		label := m.labels.At(l.Row)
		if l.Row == selectedRow {
			out = append(out, editorSelectedStyle.Render("▸ "+l.Diagram+"  "+label))
		} else {
			out = append(out, "  "+editorDimStyle.Render(l.Diagram)+"  "+editorNormalStyle.Render(label))
		}
	}
	return out
}

func (m editorModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("listtree edit") + " " + StyleDim.Render(m.path)
	if m.dirty {
		title += StyleWarning.Render(" *")
	}
	b.WriteString(title)
	b.WriteString("\n")
	if m.adding {
		b.WriteString(m.help.View(inputKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n\n")
	b.WriteString(m.view.View())
	b.WriteString("\n\n")

	if br := m.engine.Branch(m.selected); br != nil {
		b.WriteString(editorDimStyle.Render(fmt.Sprintf("  %s · row %d · lane %d · child %d · %d/%d",
			nodeLabel(m.selected), br.Row(), br.Lane(), br.ChildIndex(),
			m.selected.VerticalIndex()+1, m.tree.Len())))
		b.WriteString("\n")
	}

	switch {
	case m.adding:
		b.WriteString("New child of " + StyleHighlight.Render(nodeLabel(m.selected)) + ": " + m.input.View())
	case m.statusErr:
		b.WriteString(StyleWarning.Render(m.status))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(m.status))
	}
	return b.String()
}
