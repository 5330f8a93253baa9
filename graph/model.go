package graph

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/smallnest/graphdoc/log"
)

// Model is a transactional diagram document. It owns the cell tree rooted
// at Root, keeps a registry of every cell reachable from the root keyed by
// ID, and turns every mutation into a self-inverting Change grouped into
// an UndoableEdit.
//
// Mutations nest: BeginUpdate raises the update level, EndUpdate lowers
// it, and only when the level returns to zero is the accumulated edit
// committed and announced to listeners in a single ChangeEvent. A
// top-level operation outside any explicit update is its own one-change
// edit.
//
// A Model is not safe for concurrent mutation. All document writes must
// happen on one goroutine; only listener registration is guarded for
// cross-goroutine use.
type Model struct {
	root  *Cell
	cells map[string]*Cell

	updateLevel  int
	endingUpdate bool
	currentEdit  *UndoableEdit

	listeners listenerList
	logger    log.Logger
}

// NewModel creates an empty document: a root cell with a single default
// layer under it. Construction is not an edit; the history starts empty.
func NewModel() *Model {
	return NewModelWithRoot(NewRoot())
}

// NewModelWithRoot creates a document around an existing cell tree. The
// tree is registered and IDs are assigned where missing. A nil root is
// replaced with a fresh default skeleton.
func NewModelWithRoot(root *Cell) *Model {
	if root == nil {
		root = NewRoot()
	}
	m := &Model{
		cells:  make(map[string]*Cell),
		logger: log.GetDefaultLogger(),
	}
	m.currentEdit = m.newUndoableEdit()
	m.rootChanged(root)
	return m
}

// NewRoot builds the conventional document skeleton: a root cell holding a
// single default layer cell. Diagram cells live under the layer.
func NewRoot() *Cell {
	root := NewCell(nil)
	root.insertChild(NewCell(nil), 0)
	return root
}

// SetLogger replaces the logger used for operation tracing.
func (m *Model) SetLogger(logger log.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Root returns the document root.
func (m *Model) Root() *Cell { return m.root }

// DefaultParent returns the first layer under the root, the usual parent
// for new diagram cells. It falls back to the root itself for documents
// without layers.
func (m *Model) DefaultParent() *Cell {
	if m.root == nil || m.root.ChildCount() == 0 {
		return m.root
	}
	return m.root.ChildAt(0)
}

// IsRoot reports whether cell is the document root.
func (m *Model) IsRoot(cell *Cell) bool {
	return cell != nil && cell == m.root
}

// Contains reports whether cell is reachable from the document root.
func (m *Model) Contains(cell *Cell) bool {
	return cell != nil && m.root != nil && m.root.IsAncestor(cell)
}

// CellByID returns the registered cell with the given ID, nil if the ID is
// unknown or the cell has left the document.
func (m *Model) CellByID(id string) *Cell {
	return m.cells[id]
}

// CellCount returns the number of cells currently in the document,
// including the root and layers.
func (m *Model) CellCount() int { return len(m.cells) }

// UpdateLevel returns the current nesting depth of open updates.
func (m *Model) UpdateLevel() int { return m.updateLevel }

// Descendants returns parent and every cell below it in depth-first child
// order. A nil parent starts at the root.
func (m *Model) Descendants(parent *Cell) []*Cell {
	if parent == nil {
		parent = m.root
	}
	var result []*Cell
	var walk func(*Cell)
	walk = func(c *Cell) {
		if c == nil {
			return
		}
		result = append(result, c)
		for i := 0; i < c.ChildCount(); i++ {
			walk(c.ChildAt(i))
		}
	}
	walk(parent)
	return result
}

// EdgesBetween returns the edges connecting a and b, in either direction.
// A self-loop counts once when a and b are the same cell.
func (m *Model) EdgesBetween(a, b *Cell) []*Cell {
	if a == nil || b == nil {
		return nil
	}
	var result []*Cell
	for i := 0; i < a.EdgeCount(); i++ {
		edge := a.EdgeAt(i)
		source, target := edge.Source(), edge.Target()
		if (source == a && target == b) || (source == b && target == a) {
			result = append(result, edge)
		}
	}
	return result
}

// FilterDescendants returns every document cell satisfying pred, in
// depth-first child order starting at the root.
func (m *Model) FilterDescendants(pred func(*Cell) bool) []*Cell {
	return FilterCells(m.Descendants(nil), pred)
}

// FilterCells returns the cells of the slice satisfying pred, keeping
// their order.
func FilterCells(cells []*Cell, pred func(*Cell) bool) []*Cell {
	if pred == nil {
		return nil
	}
	var result []*Cell
	for _, cell := range cells {
		if cell != nil && pred(cell) {
			result = append(result, cell)
		}
	}
	return result
}

// SetRoot replaces the entire document tree and returns the previous root.
// The replacement is a single undoable edit; undoing it restores the old
// tree with all IDs intact.
func (m *Model) SetRoot(root *Cell) (*Cell, error) {
	if root == nil {
		return nil, ErrNilCell
	}
	previous := m.root
	m.execute(newRootChange(m, root))
	return previous, nil
}

// Clear resets the document to the fresh two-cell skeleton. The reset is
// undoable like any other root replacement.
func (m *Model) Clear() {
	m.execute(newRootChange(m, NewRoot()))
}

// Add appends child to parent's child list. If child already lives
// elsewhere in the document it is moved, keeping its subtree and, for a
// move within the document, its terminal connections.
func (m *Model) Add(parent, child *Cell) (*Cell, error) {
	if parent == nil || child == nil {
		return nil, ErrNilCell
	}
	index := parent.ChildCount()
	if child.Parent() == parent {
		index--
	}
	return m.AddAt(parent, child, index)
}

// AddAt inserts child under parent at the given z-order index. For a move
// within the same parent the index addresses the list after the child has
// been lifted out. Inserting a cell under itself or under one of its own
// descendants is rejected.
func (m *Model) AddAt(parent, child *Cell, index int) (*Cell, error) {
	if parent == nil || child == nil {
		return nil, ErrNilCell
	}
	if child.IsAncestor(parent) {
		return nil, ErrCycle
	}
	if !m.Contains(parent) {
		return nil, ErrNotInDocument
	}
	max := parent.ChildCount()
	if child.Parent() == parent {
		max--
	}
	if index < 0 || index > max {
		return nil, fmt.Errorf("%w: index %d outside [0, %d]", ErrIndexOutOfRange, index, max)
	}
	if child.Parent() == parent && parent.Index(child) == index {
		return child, nil
	}
	m.execute(newChildChange(m, parent, child, index))
	return child, nil
}

// Remove detaches cell and its whole subtree from the document. Every edge
// terminal touching the subtree, from inside or outside, is severed and
// recorded so that undo restores the wiring exactly. The root cannot be
// removed; use SetRoot or Clear to replace the document.
func (m *Model) Remove(cell *Cell) (*Cell, error) {
	if cell == nil {
		return nil, ErrNilCell
	}
	if cell == m.root {
		return nil, fmt.Errorf("%w: cannot remove the root", ErrInvalidOperation)
	}
	if !m.Contains(cell) {
		return nil, ErrNotInDocument
	}
	m.execute(newChildChange(m, nil, cell, 0))
	return cell, nil
}

// SetValue replaces the value of cell and returns the replaced value.
// Storing a deeply equal value records nothing.
func (m *Model) SetValue(cell *Cell, value any) (any, error) {
	if cell == nil {
		return nil, ErrNilCell
	}
	if !m.Contains(cell) {
		return nil, ErrNotInDocument
	}
	previous := cell.Value()
	if reflect.DeepEqual(previous, value) {
		return previous, nil
	}
	m.execute(newValueChange(m, cell, value))
	return previous, nil
}

// SetGeometry replaces the geometry of cell and returns the replaced
// geometry. Pass a fresh Geometry rather than mutating the current one in
// place, or the change cannot restore the old state.
func (m *Model) SetGeometry(cell *Cell, geometry *Geometry) (*Geometry, error) {
	if cell == nil {
		return nil, ErrNilCell
	}
	if !m.Contains(cell) {
		return nil, ErrNotInDocument
	}
	previous := cell.Geometry()
	if previous.Equal(geometry) {
		return previous, nil
	}
	m.execute(newGeometryChange(m, cell, geometry))
	return previous, nil
}

// SetStyle replaces the style of cell and returns the replaced style.
func (m *Model) SetStyle(cell *Cell, style Style) (Style, error) {
	if cell == nil {
		return nil, ErrNilCell
	}
	if !m.Contains(cell) {
		return nil, ErrNotInDocument
	}
	previous := cell.Style()
	if previous.Equal(style) {
		return previous, nil
	}
	m.execute(newStyleChange(m, cell, style))
	return previous, nil
}

// SetCollapsed folds or unfolds cell and returns the previous state.
func (m *Model) SetCollapsed(cell *Cell, collapsed bool) (bool, error) {
	if cell == nil {
		return false, ErrNilCell
	}
	if !m.Contains(cell) {
		return false, ErrNotInDocument
	}
	previous := cell.IsCollapsed()
	if previous == collapsed {
		return previous, nil
	}
	m.execute(newCollapseChange(m, cell, collapsed))
	return previous, nil
}

// SetVisible shows or hides cell and returns the previous state.
func (m *Model) SetVisible(cell *Cell, visible bool) (bool, error) {
	if cell == nil {
		return false, ErrNilCell
	}
	if !m.Contains(cell) {
		return false, ErrNotInDocument
	}
	previous := cell.IsVisible()
	if previous == visible {
		return previous, nil
	}
	m.execute(newVisibleChange(m, cell, visible))
	return previous, nil
}

// SetTerminal points one end of edge at terminal, nil to leave the end
// dangling, and returns the previous terminal. Source selects the end.
// Both edge and a non-nil terminal must be in the document.
func (m *Model) SetTerminal(edge, terminal *Cell, source bool) (*Cell, error) {
	if edge == nil {
		return nil, ErrNilCell
	}
	if !edge.IsEdge() {
		return nil, ErrNotEdge
	}
	if !m.Contains(edge) {
		return nil, ErrNotInDocument
	}
	if terminal != nil && !m.Contains(terminal) {
		return nil, ErrNotInDocument
	}
	previous := edge.Terminal(source)
	if previous == terminal {
		return previous, nil
	}
	m.execute(newTerminalChange(m, edge, terminal, source))
	return previous, nil
}

// SetTerminals rewires both ends of edge inside one edit, so a single
// change event and a single undo step cover the pair.
func (m *Model) SetTerminals(edge, source, target *Cell) error {
	var err error
	m.BeginUpdate()
	defer m.EndUpdate()
	if _, err = m.SetTerminal(edge, source, true); err != nil {
		return err
	}
	_, err = m.SetTerminal(edge, target, false)
	return err
}

// BeginUpdate opens an update scope. Scopes nest; changes executed while
// any scope is open accumulate into one edit that commits when the
// outermost scope closes.
func (m *Model) BeginUpdate() {
	m.updateLevel++
}

// EndUpdate closes the innermost update scope. Closing the outermost
// scope commits the accumulated edit and notifies listeners once, with
// the changes in execution order. Empty edits commit nothing.
//
// EndUpdate without a matching BeginUpdate panics: an unbalanced scope is
// a programming error that would silently corrupt edit grouping.
func (m *Model) EndUpdate() {
	if m.updateLevel == 0 {
		panic("graph: EndUpdate called without matching BeginUpdate")
	}
	m.updateLevel--

	if !m.endingUpdate {
		m.endingUpdate = m.updateLevel == 0
		defer func() { m.endingUpdate = false }()

		if m.endingUpdate && !m.currentEdit.Empty() {
			edit := m.currentEdit
			m.currentEdit = m.newUndoableEdit()
			m.logger.Debug("committing edit with %d change(s)", len(edit.changes))
			m.fireChange(edit, OriginCommit)
		}
	}
}

// BatchUpdate runs fn inside one update scope. The scope closes even when
// fn fails or panics. Changes already executed before a failure stay
// applied and commit with the edit; grouping is not a rollback mechanism.
func (m *Model) BatchUpdate(fn func() error) error {
	m.BeginUpdate()
	defer m.EndUpdate()
	return fn()
}

// execute runs one change and files it in the current edit. Outside an
// open scope this commits immediately as a one-change edit.
func (m *Model) execute(change Change) {
	change.Execute()
	m.BeginUpdate()
	m.currentEdit.add(change)
	m.EndUpdate()
}

// rootChanged swaps in a new root tree, resets the registry and registers
// every cell of the new tree. Returns the previous root.
func (m *Model) rootChanged(root *Cell) *Cell {
	previous := m.root
	m.root = root
	m.cells = make(map[string]*Cell)
	m.cellAdded(root)
	return previous
}

// parentForCellChanged relinks cell under parent at index, nil parent
// detaching it, and returns the previous parent. The registry tracks the
// move: cells entering the tree are registered, cells leaving it are
// dropped.
func (m *Model) parentForCellChanged(cell, parent *Cell, index int) *Cell {
	previous := cell.Parent()
	if parent != nil {
		if parent != previous || previous.Index(cell) != index {
			parent.insertChild(cell, index)
		}
	} else if previous != nil {
		previous.removeChildAt(previous.Index(cell))
	}

	if parent == nil {
		m.cellRemoved(cell)
	} else if !m.Contains(previous) && m.Contains(parent) {
		m.cellAdded(cell)
	}
	return previous
}

// terminalForCellChanged rewires one end of edge and returns the previous
// terminal. Incident-edge lists on the terminals are kept consistent.
func (m *Model) terminalForCellChanged(edge, terminal *Cell, source bool) *Cell {
	previous := edge.Terminal(source)
	if terminal != nil {
		terminal.insertEdge(edge, source)
	} else {
		edge.removeFromTerminal(source)
	}
	return previous
}

func (m *Model) valueForCellChanged(cell *Cell, value any) any {
	previous := cell.value
	cell.value = value
	return previous
}

func (m *Model) geometryForCellChanged(cell *Cell, geometry *Geometry) *Geometry {
	previous := cell.geometry
	cell.geometry = geometry
	return previous
}

func (m *Model) styleForCellChanged(cell *Cell, style Style) Style {
	previous := cell.style
	cell.style = style
	return previous
}

func (m *Model) collapsedForCellChanged(cell *Cell, collapsed bool) bool {
	previous := cell.collapsed
	cell.collapsed = collapsed
	return previous
}

func (m *Model) visibleForCellChanged(cell *Cell, visible bool) bool {
	previous := cell.visible
	cell.visible = visible
	return previous
}

// cellAdded registers cell and its subtree. Cells without an ID get a
// generated one; an ID colliding with a registered cell is replaced, so
// the registry always maps one ID to one live cell.
func (m *Model) cellAdded(cell *Cell) {
	if cell == nil {
		return
	}
	if cell.id == "" {
		cell.id = m.createID()
	}
	if collision := m.cells[cell.id]; collision != cell {
		for m.cells[cell.id] != nil {
			m.logger.Debug("cell ID %s collides, regenerating", cell.id)
			cell.id = m.createID()
		}
		m.cells[cell.id] = cell
	}
	for i := 0; i < cell.ChildCount(); i++ {
		m.cellAdded(cell.ChildAt(i))
	}
}

// cellRemoved drops cell and its subtree from the registry. The subtree
// keeps its structure and IDs for a later reattach.
func (m *Model) cellRemoved(cell *Cell) {
	if cell == nil {
		return
	}
	for i := cell.ChildCount() - 1; i >= 0; i-- {
		m.cellRemoved(cell.ChildAt(i))
	}
	delete(m.cells, cell.id)
}

func (m *Model) createID() string {
	return uuid.NewString()
}
