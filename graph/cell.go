package graph

// Cell is one node of the document tree: a vertex, an edge, or a plain
// group/root cell. It owns its value, geometry, style and flags, a link to
// its parent, the ordered list of its children (the order is z-order), and,
// for edges, the two terminal references plus the reverse incident-edge
// list on the terminals.
//
// A Cell is a passive data holder. It is created detached, enters a
// document through Model.Add, and from then on is mutated exclusively
// through Model operations so that every change is recorded and reversible.
// Collaborators reading cells directly must treat them as read-only.
type Cell struct {
	id          string
	value       any
	geometry    *Geometry
	style       Style
	vertex      bool
	edge        bool
	connectable bool
	collapsed   bool
	visible     bool

	parent   *Cell
	children []*Cell

	// Terminals of an edge cell.
	source *Cell
	target *Cell

	// Edges incident on this cell, maintained by the model whenever a
	// terminal is set or cleared.
	edges []*Cell
}

// NewCell creates a detached cell carrying a value. The cell has no kind
// flag; use NewVertex or NewEdge for diagram cells, NewCell for roots and
// structural group cells.
func NewCell(value any) *Cell {
	return &Cell{
		value:       value,
		connectable: true,
		visible:     true,
	}
}

// NewVertex creates a detached vertex cell.
func NewVertex(value any, geometry *Geometry, style Style) *Cell {
	c := NewCell(value)
	c.vertex = true
	c.geometry = geometry
	c.style = style
	return c
}

// NewEdge creates a detached edge cell. Its geometry is relative, as edge
// labels are positioned along the edge run.
func NewEdge(value any, style Style) *Cell {
	c := NewCell(value)
	c.edge = true
	c.geometry = &Geometry{Relative: true}
	c.style = style
	return c
}

// WithID sets an explicit identifier on a detached cell and returns the
// cell for chaining. Cells without an ID receive a generated one when they
// enter a document; a colliding ID is replaced on entry.
func (c *Cell) WithID(id string) *Cell {
	c.id = id
	return c
}

// WithConnectable overrides the connectable flag on a detached cell and
// returns the cell for chaining. Cells are connectable by default.
func (c *Cell) WithConnectable(connectable bool) *Cell {
	c.connectable = connectable
	return c
}

// ID returns the cell identifier, empty until the cell first enters a
// document or WithID assigned one.
func (c *Cell) ID() string { return c.id }

// Value returns the value payload.
func (c *Cell) Value() any { return c.value }

// Geometry returns the cell geometry. The returned value is live; mutate
// geometry only by passing a fresh Geometry to Model.SetGeometry.
func (c *Cell) Geometry() *Geometry { return c.geometry }

// Style returns the cell style. The returned map is live; mutate style only
// by passing a fresh Style to Model.SetStyle.
func (c *Cell) Style() Style { return c.style }

// IsVertex reports whether the cell is a vertex.
func (c *Cell) IsVertex() bool { return c.vertex }

// IsEdge reports whether the cell is an edge.
func (c *Cell) IsEdge() bool { return c.edge }

// IsConnectable reports whether edges may terminate on this cell.
func (c *Cell) IsConnectable() bool { return c.connectable }

// IsCollapsed reports whether the cell is folded.
func (c *Cell) IsCollapsed() bool { return c.collapsed }

// IsVisible reports whether the cell is visible.
func (c *Cell) IsVisible() bool { return c.visible }

// Parent returns the parent cell, nil for the root and for detached cells.
func (c *Cell) Parent() *Cell { return c.parent }

// ChildCount returns the number of children.
func (c *Cell) ChildCount() int { return len(c.children) }

// ChildAt returns the child at the given index, nil when out of range.
func (c *Cell) ChildAt(index int) *Cell {
	if index < 0 || index >= len(c.children) {
		return nil
	}
	return c.children[index]
}

// Children returns a copy of the ordered child list.
func (c *Cell) Children() []*Cell {
	children := make([]*Cell, len(c.children))
	copy(children, c.children)
	return children
}

// Index returns the position of child in this cell's child list, -1 when
// child is not a direct child.
func (c *Cell) Index(child *Cell) int {
	for i, cc := range c.children {
		if cc == child {
			return i
		}
	}
	return -1
}

// Terminal returns the source terminal when source is true, the target
// terminal otherwise.
func (c *Cell) Terminal(source bool) *Cell {
	if source {
		return c.source
	}
	return c.target
}

// Source returns the source terminal of an edge cell.
func (c *Cell) Source() *Cell { return c.source }

// Target returns the target terminal of an edge cell.
func (c *Cell) Target() *Cell { return c.target }

// EdgeCount returns the number of edges incident on this cell.
func (c *Cell) EdgeCount() int { return len(c.edges) }

// EdgeAt returns the incident edge at the given index, nil when out of
// range.
func (c *Cell) EdgeAt(index int) *Cell {
	if index < 0 || index >= len(c.edges) {
		return nil
	}
	return c.edges[index]
}

// Edges returns a copy of the incident-edge list.
func (c *Cell) Edges() []*Cell {
	edges := make([]*Cell, len(c.edges))
	copy(edges, c.edges)
	return edges
}

// IsAncestor reports whether this cell is an ancestor of other, walking
// other's parent links upwards. A cell counts as its own ancestor, which is
// exactly the guard needed before a reparent.
func (c *Cell) IsAncestor(other *Cell) bool {
	for other != nil && other != c {
		other = other.parent
	}
	return other == c
}

// insertChild links child under this cell at the given index, detaching it
// from its previous parent first. An out-of-range index appends; the model
// validates indices before any change record exists.
func (c *Cell) insertChild(child *Cell, index int) {
	if child == nil {
		return
	}
	child.removeFromParent()
	if index < 0 || index > len(c.children) {
		index = len(c.children)
	}
	child.parent = c
	c.children = append(c.children, nil)
	copy(c.children[index+1:], c.children[index:])
	c.children[index] = child
}

// removeChildAt unlinks the child at index.
func (c *Cell) removeChildAt(index int) *Cell {
	if index < 0 || index >= len(c.children) {
		return nil
	}
	child := c.children[index]
	child.parent = nil
	c.children = append(c.children[:index], c.children[index+1:]...)
	return child
}

func (c *Cell) removeFromParent() {
	if c.parent == nil {
		return
	}
	if i := c.parent.Index(c); i >= 0 {
		c.parent.removeChildAt(i)
	}
}

// insertEdge registers edge as incident on this cell and points the edge's
// source (outgoing true) or target terminal at this cell. The edge is first
// unhooked from its previous terminal on that side. A self-loop appears in
// the incident list once.
func (c *Cell) insertEdge(edge *Cell, outgoing bool) {
	if edge == nil {
		return
	}
	edge.removeFromTerminal(outgoing)
	if edge.Terminal(!outgoing) != c || c.edgeIndex(edge) < 0 {
		c.edges = append(c.edges, edge)
	}
	edge.setTerminal(c, outgoing)
}

// removeEdge unregisters edge from this cell's incident list and clears the
// edge's terminal on the given side. The incident entry stays while the
// opposite side still terminates here, so self-loops detach cleanly one
// side at a time.
func (c *Cell) removeEdge(edge *Cell, outgoing bool) {
	if edge == nil {
		return
	}
	if edge.Terminal(!outgoing) != c {
		if i := c.edgeIndex(edge); i >= 0 {
			c.edges = append(c.edges[:i], c.edges[i+1:]...)
		}
	}
	edge.setTerminal(nil, outgoing)
}

func (c *Cell) removeFromTerminal(outgoing bool) {
	if t := c.Terminal(outgoing); t != nil {
		t.removeEdge(c, outgoing)
	}
}

func (c *Cell) setTerminal(terminal *Cell, source bool) {
	if source {
		c.source = terminal
	} else {
		c.target = terminal
	}
}

func (c *Cell) edgeIndex(edge *Cell) int {
	for i, e := range c.edges {
		if e == edge {
			return i
		}
	}
	return -1
}
