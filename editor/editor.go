// Package editor composes a document model with an undo manager behind the
// capability surfaces applications edit through.
//
// The Editor owns a graph.Model and its history and implements three small
// interfaces: Foldable collapses and expands groups with a geometry swap,
// Editable mutates and renders labels, and TerminalQueryable answers
// connectivity questions. Cells can be selected by ID path with doublestar
// patterns via Match.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/smallnest/graphdoc/graph"
	"github.com/smallnest/graphdoc/label"
	"github.com/smallnest/graphdoc/log"
)

var (
	// ErrNotEditable reports a mutation through a read-only editor.
	ErrNotEditable = errors.New("editor: not editable")

	// ErrFoldingDisabled reports a fold on an editor with folding off.
	ErrFoldingDisabled = errors.New("editor: folding disabled")

	// ErrNotConnectable reports a connection to a terminal that refuses
	// connections.
	ErrNotConnectable = errors.New("editor: terminal not connectable")
)

// Foldable collapses and expands groups, swapping geometry bounds so a
// folded cell keeps a stable footprint.
type Foldable interface {
	Fold(cell *graph.Cell, recurse bool) error
	Expand(cell *graph.Cell, recurse bool) error
}

// Editable mutates and renders cell labels.
type Editable interface {
	SetLabel(cell *graph.Cell, value any) error
	LabelText(cell *graph.Cell) string
}

// TerminalQueryable answers connectivity questions without mutating the
// document.
type TerminalQueryable interface {
	Terminal(edge *graph.Cell, source bool) *graph.Cell
	Edges(cell *graph.Cell) []*graph.Cell
	EdgesBetween(a, b *graph.Cell) []*graph.Cell
	Opposite(edge, terminal *graph.Cell) *graph.Cell
}

// Editor owns a document model and its undo history and exposes the
// editing surface applications build on.
type Editor struct {
	config  Config
	model   *graph.Model
	undoMgr *graph.UndoManager
	logger  log.Logger
}

var (
	_ Foldable          = (*Editor)(nil)
	_ Editable          = (*Editor)(nil)
	_ TerminalQueryable = (*Editor)(nil)
)

// NewEditor creates an editor over a fresh document.
func NewEditor(config Config) *Editor {
	return NewEditorFor(graph.NewModel(), config)
}

// NewEditorFor wraps an existing document. The editor registers its undo
// manager as a change listener and points the model's logger at the
// configured level.
func NewEditorFor(m *graph.Model, config Config) *Editor {
	undoMgr := graph.NewUndoManagerFor(m, config.HistorySize)

	logger := log.NewDefaultLogger(log.ParseLevel(config.LogLevel))
	m.SetLogger(logger)

	return &Editor{
		config:  config,
		model:   m,
		undoMgr: undoMgr,
		logger:  logger,
	}
}

// Model returns the underlying document.
func (e *Editor) Model() *graph.Model { return e.model }

// UndoManager returns the editor's history manager.
func (e *Editor) UndoManager() *graph.UndoManager { return e.undoMgr }

// Config returns the editor configuration.
func (e *Editor) Config() Config { return e.config }

// Undo rolls back the most recent edit, reporting whether one was undone.
func (e *Editor) Undo() bool { return e.undoMgr.Undo() }

// Redo reapplies the most recently undone edit, reporting whether one was
// redone.
func (e *Editor) Redo() bool { return e.undoMgr.Redo() }

// SetLabel replaces a cell's value. Equal values are a no-op like every
// model mutation.
func (e *Editor) SetLabel(cell *graph.Cell, value any) error {
	if !e.config.Editable {
		return ErrNotEditable
	}
	_, err := e.model.SetValue(cell, value)
	return err
}

// LabelText returns the display label of a cell: sanitized HTML when the
// editor renders HTML labels, one-line plain text otherwise.
func (e *Editor) LabelText(cell *graph.Cell) string {
	if cell == nil {
		return ""
	}
	if e.config.HTMLLabels {
		return label.RenderHTML(cell.Value())
	}
	return label.PlainText(label.Text(cell.Value()))
}

// Connect adds edge under parent and wires it from source to target, all
// in one undoable step. Both terminals must accept connections. A nil
// parent uses the default parent.
func (e *Editor) Connect(parent, edge, source, target *graph.Cell) (*graph.Cell, error) {
	if !e.config.Editable {
		return nil, ErrNotEditable
	}
	if edge == nil || source == nil || target == nil {
		return nil, graph.ErrNilCell
	}
	if !source.IsConnectable() || !target.IsConnectable() {
		return nil, ErrNotConnectable
	}
	if parent == nil {
		parent = e.model.DefaultParent()
	}

	err := e.model.BatchUpdate(func() error {
		if _, err := e.model.Add(parent, edge); err != nil {
			return err
		}
		return e.model.SetTerminals(edge, source, target)
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// Fold collapses cell. With recurse every group below cell folds too. The
// collapse and its geometry swap commit as one undoable step.
func (e *Editor) Fold(cell *graph.Cell, recurse bool) error {
	return e.setFolded(cell, true, recurse)
}

// Expand reverses Fold, restoring the bounds stashed in the alternate
// geometry.
func (e *Editor) Expand(cell *graph.Cell, recurse bool) error {
	return e.setFolded(cell, false, recurse)
}

func (e *Editor) setFolded(cell *graph.Cell, collapsed, recurse bool) error {
	if !e.config.FoldingEnabled {
		return ErrFoldingDisabled
	}
	if cell == nil {
		return graph.ErrNilCell
	}

	targets := []*graph.Cell{cell}
	if recurse {
		targets = e.model.Descendants(cell)
	}

	return e.model.BatchUpdate(func() error {
		for _, target := range targets {
			if err := e.foldOne(target, collapsed); err != nil {
				return err
			}
		}
		return nil
	})
}

// foldOne folds a single group. Edges, leaves and cells already in the
// requested state are skipped.
func (e *Editor) foldOne(cell *graph.Cell, collapsed bool) error {
	if cell.IsEdge() || cell.ChildCount() == 0 || cell.IsCollapsed() == collapsed {
		return nil
	}
	if _, err := e.model.SetCollapsed(cell, collapsed); err != nil {
		return err
	}
	return e.swapFoldedBounds(cell, collapsed)
}

// swapFoldedBounds exchanges a cell's bounds with its alternate geometry.
// A first-time fold without an alternate stashes the current bounds and
// applies the configured collapsed size; expanding without an alternate
// leaves the bounds alone.
func (e *Editor) swapFoldedBounds(cell *graph.Cell, collapsed bool) error {
	geometry := cell.Geometry()
	if geometry == nil {
		return nil
	}

	var next *graph.Geometry
	switch {
	case geometry.Alternate != nil:
		next = geometry.Swapped()
	case collapsed:
		next = geometry.Clone()
		next.Alternate = geometry.Clone()
		next.Width = e.config.CollapsedWidth
		next.Height = e.config.CollapsedHeight
	default:
		return nil
	}

	_, err := e.model.SetGeometry(cell, next)
	return err
}

// Terminal returns one end of an edge, the source end when source is true.
func (e *Editor) Terminal(edge *graph.Cell, source bool) *graph.Cell {
	if edge == nil {
		return nil
	}
	return edge.Terminal(source)
}

// Edges returns the edges incident on cell.
func (e *Editor) Edges(cell *graph.Cell) []*graph.Cell {
	if cell == nil {
		return nil
	}
	return cell.Edges()
}

// EdgesBetween returns the edges connecting a and b in either direction.
func (e *Editor) EdgesBetween(a, b *graph.Cell) []*graph.Cell {
	return e.model.EdgesBetween(a, b)
}

// Opposite returns the other end of edge relative to terminal, nil when
// terminal is not an end of edge.
func (e *Editor) Opposite(edge, terminal *graph.Cell) *graph.Cell {
	if edge == nil || terminal == nil {
		return nil
	}
	switch terminal {
	case edge.Source():
		return edge.Target()
	case edge.Target():
		return edge.Source()
	}
	return nil
}

// Match returns the cells whose slash-joined ID paths match the doublestar
// pattern, in document order. Paths start below the root, so a vertex "a"
// on layer "layer0" has the path "layer0/a" and matches "layer0/*" or
// "**/a".
func (e *Editor) Match(pattern string) ([]*graph.Cell, error) {
	var matched []*graph.Cell
	for _, cell := range e.model.Descendants(nil) {
		if e.model.IsRoot(cell) {
			continue
		}
		ok, err := doublestar.Match(pattern, e.cellPath(cell))
		if err != nil {
			return nil, fmt.Errorf("editor: invalid pattern %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, cell)
		}
	}
	return matched, nil
}

// cellPath joins the IDs from the layer down to cell with slashes.
func (e *Editor) cellPath(cell *graph.Cell) string {
	var parts []string
	for c := cell; c != nil && !e.model.IsRoot(c); c = c.Parent() {
		parts = append(parts, c.ID())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}
