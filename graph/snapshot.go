package graph

import (
	"encoding/json"
	"fmt"

	"github.com/smallnest/graphdoc/store"
)

// CellSnapshot is the serializable image of a cell subtree. Terminals are
// referenced by ID so a snapshot can describe wiring to cells outside the
// captured subtree; resolving those references is the loader's job.
type CellSnapshot struct {
	ID          string          `json:"id"`
	Value       any             `json:"value,omitempty"`
	Style       Style           `json:"style,omitempty"`
	Geometry    *Geometry       `json:"geometry,omitempty"`
	Vertex      bool            `json:"vertex,omitempty"`
	Edge        bool            `json:"edge,omitempty"`
	Connectable bool            `json:"connectable"`
	Collapsed   bool            `json:"collapsed,omitempty"`
	Visible     bool            `json:"visible"`
	Source      string          `json:"source,omitempty"`
	Target      string          `json:"target,omitempty"`
	Children    []*CellSnapshot `json:"children,omitempty"`
}

// cellSnapshotJSON is the wire form of CellSnapshot. The value field runs
// through the store value registry so registered value types survive the
// round trip.
type cellSnapshotJSON struct {
	ID          string          `json:"id"`
	Value       json.RawMessage `json:"value,omitempty"`
	Style       Style           `json:"style,omitempty"`
	Geometry    *Geometry       `json:"geometry,omitempty"`
	Vertex      bool            `json:"vertex,omitempty"`
	Edge        bool            `json:"edge,omitempty"`
	Connectable bool            `json:"connectable"`
	Collapsed   bool            `json:"collapsed,omitempty"`
	Visible     bool            `json:"visible"`
	Source      string          `json:"source,omitempty"`
	Target      string          `json:"target,omitempty"`
	Children    []*CellSnapshot `json:"children,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (snap *CellSnapshot) MarshalJSON() ([]byte, error) {
	out := cellSnapshotJSON{
		ID:          snap.ID,
		Style:       snap.Style,
		Geometry:    snap.Geometry,
		Vertex:      snap.Vertex,
		Edge:        snap.Edge,
		Connectable: snap.Connectable,
		Collapsed:   snap.Collapsed,
		Visible:     snap.Visible,
		Source:      snap.Source,
		Target:      snap.Target,
		Children:    snap.Children,
	}
	if snap.Value != nil {
		raw, err := store.MarshalValue(snap.Value)
		if err != nil {
			return nil, fmt.Errorf("graph: encoding snapshot value: %w", err)
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (snap *CellSnapshot) UnmarshalJSON(data []byte) error {
	var in cellSnapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*snap = CellSnapshot{
		ID:          in.ID,
		Style:       in.Style,
		Geometry:    in.Geometry,
		Vertex:      in.Vertex,
		Edge:        in.Edge,
		Connectable: in.Connectable,
		Collapsed:   in.Collapsed,
		Visible:     in.Visible,
		Source:      in.Source,
		Target:      in.Target,
		Children:    in.Children,
	}
	if len(in.Value) > 0 {
		value, err := store.UnmarshalValue(in.Value)
		if err != nil {
			return fmt.Errorf("graph: decoding snapshot value: %w", err)
		}
		snap.Value = value
	}
	return nil
}

// Snapshot captures the whole document as a CellSnapshot tree. The
// snapshot aliases live values, styles and geometries, so serialize it
// before mutating the document further.
func (m *Model) Snapshot() *CellSnapshot {
	return snapshotCell(m.root)
}

func snapshotCell(cell *Cell) *CellSnapshot {
	if cell == nil {
		return nil
	}
	snap := &CellSnapshot{
		ID:          cell.ID(),
		Value:       cell.Value(),
		Style:       cell.Style(),
		Geometry:    cell.Geometry(),
		Vertex:      cell.IsVertex(),
		Edge:        cell.IsEdge(),
		Connectable: cell.IsConnectable(),
		Collapsed:   cell.IsCollapsed(),
		Visible:     cell.IsVisible(),
	}
	if source := cell.Source(); source != nil {
		snap.Source = source.ID()
	}
	if target := cell.Target(); target != nil {
		snap.Target = target.ID()
	}
	for i := 0; i < cell.ChildCount(); i++ {
		snap.Children = append(snap.Children, snapshotCell(cell.ChildAt(i)))
	}
	return snap
}

// snapPair keeps a built cell next to its snapshot so terminal references
// can be resolved once the subtree is inside a document.
type snapPair struct {
	cell *Cell
	snap *CellSnapshot
}

// buildSnapshotCells materializes a snapshot as a detached cell tree,
// keeping IDs. Terminals are not wired here; the returned pairs carry the
// IDs still to resolve.
func buildSnapshotCells(snap *CellSnapshot, pairs *[]snapPair) *Cell {
	if snap == nil {
		return nil
	}
	cell := &Cell{
		id:          snap.ID,
		value:       snap.Value,
		geometry:    snap.Geometry,
		style:       snap.Style,
		vertex:      snap.Vertex,
		edge:        snap.Edge,
		connectable: snap.Connectable,
		collapsed:   snap.Collapsed,
		visible:     snap.Visible,
	}
	*pairs = append(*pairs, snapPair{cell: cell, snap: snap})
	for _, child := range snap.Children {
		cell.insertChild(buildSnapshotCells(child, pairs), cell.ChildCount())
	}
	return cell
}

// resolveSnapshotTerminals wires the terminals recorded in the snapshots,
// looking cells up in the document registry. The built cells must already
// be inside the document.
func (m *Model) resolveSnapshotTerminals(pairs []snapPair) error {
	for _, p := range pairs {
		if p.snap.Source != "" {
			terminal := m.CellByID(p.snap.Source)
			if terminal == nil {
				return fmt.Errorf("%w: terminal %q", ErrUnknownCell, p.snap.Source)
			}
			if _, err := m.SetTerminal(p.cell, terminal, true); err != nil {
				return err
			}
		}
		if p.snap.Target != "" {
			terminal := m.CellByID(p.snap.Target)
			if terminal == nil {
				return fmt.Errorf("%w: terminal %q", ErrUnknownCell, p.snap.Target)
			}
			if _, err := m.SetTerminal(p.cell, terminal, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewModelFromSnapshot rebuilds a document from a snapshot produced by
// Snapshot. Cell IDs are preserved. Construction is not an edit; the new
// document starts with an empty history.
func NewModelFromSnapshot(snap *CellSnapshot) (*Model, error) {
	if snap == nil {
		return nil, ErrNilCell
	}
	var pairs []snapPair
	root := buildSnapshotCells(snap, &pairs)
	m := NewModelWithRoot(root)
	for _, p := range pairs {
		if p.snap.Source != "" {
			terminal := m.CellByID(p.snap.Source)
			if terminal == nil {
				return nil, fmt.Errorf("%w: terminal %q", ErrUnknownCell, p.snap.Source)
			}
			terminal.insertEdge(p.cell, true)
		}
		if p.snap.Target != "" {
			terminal := m.CellByID(p.snap.Target)
			if terminal == nil {
				return nil, fmt.Errorf("%w: terminal %q", ErrUnknownCell, p.snap.Target)
			}
			terminal.insertEdge(p.cell, false)
		}
	}
	return m, nil
}
