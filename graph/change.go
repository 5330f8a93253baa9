package graph

// Change is one atomic mutation of a document. Every change is
// self-inverting: executing it applies the mutation and flips its internal
// state so that executing it again restores what it replaced. Undo and redo
// are therefore the same operation, which keeps history replay trivially
// symmetric.
//
// Changes are created and executed by Model operations only. After a change
// has executed, its exported fields describe the state the document now
// carries, and the Previous fields describe the state it replaced.
type Change interface {
	// Execute applies the change to the document and swaps its state so the
	// next Execute reverses it.
	Execute()

	isChange()
}

// Connection remembers one severed terminal of a detached subtree. Undoing
// the detachment replays the recorded connections to rewire every edge that
// was cut.
type Connection struct {
	Edge     *Cell
	Terminal *Cell
	Source   bool
}

// RootChange replaces the document root, and with it the whole tree.
type RootChange struct {
	model    *Model
	Root     *Cell
	Previous *Cell
}

func newRootChange(model *Model, root *Cell) *RootChange {
	return &RootChange{model: model, Root: root, Previous: root}
}

func (ch *RootChange) Execute() {
	ch.Root = ch.Previous
	ch.Previous = ch.model.rootChanged(ch.Previous)
}

func (ch *RootChange) isChange() {}

// ChildChange moves a cell between parents or in and out of the document.
// A nil Parent detaches the subtree; detaching severs the terminals of
// every edge incident on any cell of the subtree and records them, so the
// inverse execution reattaches the subtree and rewires those edges.
type ChildChange struct {
	model         *Model
	Child         *Cell
	Parent        *Cell
	Previous      *Cell
	Index         int
	PreviousIndex int

	connections []Connection
}

func newChildChange(model *Model, parent, child *Cell, index int) *ChildChange {
	return &ChildChange{
		model:         model,
		Child:         child,
		Parent:        parent,
		Previous:      parent,
		Index:         index,
		PreviousIndex: index,
	}
}

func (ch *ChildChange) Execute() {
	if ch.Child == nil {
		return
	}
	oldParent := ch.Child.Parent()
	oldIndex := 0
	if oldParent != nil {
		oldIndex = oldParent.Index(ch.Child)
	}

	if ch.Previous == nil {
		ch.disconnect()
	}
	prev := ch.model.parentForCellChanged(ch.Child, ch.Previous, ch.PreviousIndex)
	if ch.Previous != nil {
		ch.reconnect()
	}

	ch.Parent = ch.Previous
	ch.Previous = prev
	ch.Index = ch.PreviousIndex
	ch.PreviousIndex = oldIndex
}

func (ch *ChildChange) isChange() {}

// Connections returns the terminal connections severed by the most recent
// detaching execution, in the order they were cut.
func (ch *ChildChange) Connections() []Connection {
	connections := make([]Connection, len(ch.connections))
	copy(connections, ch.connections)
	return connections
}

// disconnect severs every terminal of every edge incident on the subtree
// rooted at Child, recording each cut for the inverse execution. The walk
// is depth-first in child order so replay order is deterministic.
func (ch *ChildChange) disconnect() {
	ch.connections = ch.connections[:0]
	ch.collect(ch.Child)
}

func (ch *ChildChange) collect(cell *Cell) {
	if cell.IsEdge() {
		ch.sever(cell, true)
		ch.sever(cell, false)
	}
	for _, edge := range cell.Edges() {
		if edge.Terminal(true) == cell {
			ch.sever(edge, true)
		}
		if edge.Terminal(false) == cell {
			ch.sever(edge, false)
		}
	}
	for i := 0; i < cell.ChildCount(); i++ {
		ch.collect(cell.ChildAt(i))
	}
}

func (ch *ChildChange) sever(edge *Cell, source bool) {
	terminal := edge.Terminal(source)
	if terminal == nil {
		return
	}
	ch.connections = append(ch.connections, Connection{
		Edge:     edge,
		Terminal: terminal,
		Source:   source,
	})
	ch.model.terminalForCellChanged(edge, nil, source)
}

// reconnect rewires the connections recorded by the matching disconnect,
// in the same order.
func (ch *ChildChange) reconnect() {
	for _, conn := range ch.connections {
		ch.model.terminalForCellChanged(conn.Edge, conn.Terminal, conn.Source)
	}
}

// TerminalChange rewires one end of an edge. Source selects which end.
type TerminalChange struct {
	model    *Model
	Cell     *Cell
	Terminal *Cell
	Previous *Cell
	Source   bool
}

func newTerminalChange(model *Model, cell, terminal *Cell, source bool) *TerminalChange {
	return &TerminalChange{
		model:    model,
		Cell:     cell,
		Terminal: terminal,
		Previous: terminal,
		Source:   source,
	}
}

func (ch *TerminalChange) Execute() {
	if ch.Cell == nil {
		return
	}
	ch.Terminal = ch.Previous
	ch.Previous = ch.model.terminalForCellChanged(ch.Cell, ch.Previous, ch.Source)
}

func (ch *TerminalChange) isChange() {}

// ValueChange replaces the value payload of a cell.
type ValueChange struct {
	model    *Model
	Cell     *Cell
	Value    any
	Previous any
}

func newValueChange(model *Model, cell *Cell, value any) *ValueChange {
	return &ValueChange{model: model, Cell: cell, Value: value, Previous: value}
}

func (ch *ValueChange) Execute() {
	if ch.Cell == nil {
		return
	}
	ch.Value = ch.Previous
	ch.Previous = ch.model.valueForCellChanged(ch.Cell, ch.Previous)
}

func (ch *ValueChange) isChange() {}

// GeometryChange replaces the geometry of a cell.
type GeometryChange struct {
	model    *Model
	Cell     *Cell
	Geometry *Geometry
	Previous *Geometry
}

func newGeometryChange(model *Model, cell *Cell, geometry *Geometry) *GeometryChange {
	return &GeometryChange{model: model, Cell: cell, Geometry: geometry, Previous: geometry}
}

func (ch *GeometryChange) Execute() {
	if ch.Cell == nil {
		return
	}
	ch.Geometry = ch.Previous
	ch.Previous = ch.model.geometryForCellChanged(ch.Cell, ch.Previous)
}

func (ch *GeometryChange) isChange() {}

// StyleChange replaces the style of a cell.
type StyleChange struct {
	model    *Model
	Cell     *Cell
	Style    Style
	Previous Style
}

func newStyleChange(model *Model, cell *Cell, style Style) *StyleChange {
	return &StyleChange{model: model, Cell: cell, Style: style, Previous: style}
}

func (ch *StyleChange) Execute() {
	if ch.Cell == nil {
		return
	}
	ch.Style = ch.Previous
	ch.Previous = ch.model.styleForCellChanged(ch.Cell, ch.Previous)
}

func (ch *StyleChange) isChange() {}

// CollapseChange folds or unfolds a cell.
type CollapseChange struct {
	model     *Model
	Cell      *Cell
	Collapsed bool
	Previous  bool
}

func newCollapseChange(model *Model, cell *Cell, collapsed bool) *CollapseChange {
	return &CollapseChange{model: model, Cell: cell, Collapsed: collapsed, Previous: collapsed}
}

func (ch *CollapseChange) Execute() {
	if ch.Cell == nil {
		return
	}
	ch.Collapsed = ch.Previous
	ch.Previous = ch.model.collapsedForCellChanged(ch.Cell, ch.Previous)
}

func (ch *CollapseChange) isChange() {}

// VisibleChange shows or hides a cell.
type VisibleChange struct {
	model    *Model
	Cell     *Cell
	Visible  bool
	Previous bool
}

func newVisibleChange(model *Model, cell *Cell, visible bool) *VisibleChange {
	return &VisibleChange{model: model, Cell: cell, Visible: visible, Previous: visible}
}

func (ch *VisibleChange) Execute() {
	if ch.Cell == nil {
		return
	}
	ch.Visible = ch.Previous
	ch.Previous = ch.model.visibleForCellChanged(ch.Cell, ch.Previous)
}

func (ch *VisibleChange) isChange() {}
