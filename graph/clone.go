package graph

// cloneShallow copies the cell's own data: value, geometry, style and
// flags. Tree links, edge links and the ID are not copied; clones earn a
// fresh ID when they enter a document. The value is copied by reference.
func (c *Cell) cloneShallow() *Cell {
	return &Cell{
		value:       c.value,
		geometry:    c.geometry.Clone(),
		style:       c.style.Clone(),
		vertex:      c.vertex,
		edge:        c.edge,
		connectable: c.connectable,
		collapsed:   c.collapsed,
		visible:     c.visible,
	}
}

// CloneCell returns a deep copy of cell and its whole subtree. Edges
// inside the subtree stay wired to the cloned terminals; terminal
// references leaving the subtree are dropped, so the copied edge ends
// dangle until reconnected. The clone is detached and unregistered until
// added to a document.
func (m *Model) CloneCell(cell *Cell) *Cell {
	if cell == nil {
		return nil
	}
	return m.CloneCells([]*Cell{cell}, true)[0]
}

// CloneCells returns deep copies of the given cells, preserving nil
// entries and the slice order. With includeChildren every subtree is
// copied recursively. Terminal remapping considers the full cloned set at
// once, so edges running between two copied subtrees remain connected in
// the copies.
func (m *Model) CloneCells(cells []*Cell, includeChildren bool) []*Cell {
	mapping := make(map[*Cell]*Cell)
	clones := make([]*Cell, len(cells))
	for i, cell := range cells {
		if cell != nil {
			clones[i] = m.cloneCellImpl(cell, mapping, includeChildren)
		}
	}
	for i, clone := range clones {
		if clone != nil {
			m.restoreClone(clone, cells[i], mapping)
		}
	}
	return clones
}

func (m *Model) cloneCellImpl(cell *Cell, mapping map[*Cell]*Cell, includeChildren bool) *Cell {
	if clone, ok := mapping[cell]; ok {
		return clone
	}
	clone := cell.cloneShallow()
	mapping[cell] = clone
	if includeChildren {
		for i := 0; i < cell.ChildCount(); i++ {
			clone.insertChild(m.cloneCellImpl(cell.ChildAt(i), mapping, true), i)
		}
	}
	return clone
}

// restoreClone rewires the clone's terminals through the mapping,
// mirroring the original's wiring wherever the terminal was cloned too.
func (m *Model) restoreClone(clone, cell *Cell, mapping map[*Cell]*Cell) {
	if source := cell.Terminal(true); source != nil {
		if mapped, ok := mapping[source]; ok {
			mapped.insertEdge(clone, true)
		}
	}
	if target := cell.Terminal(false); target != nil {
		if mapped, ok := mapping[target]; ok {
			mapped.insertEdge(clone, false)
		}
	}
	for i := 0; i < clone.ChildCount(); i++ {
		m.restoreClone(clone.ChildAt(i), cell.ChildAt(i), mapping)
	}
}
