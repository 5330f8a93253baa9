package graph

import (
	"testing"
)

func TestValueChange_AppliedState(t *testing.T) {
	t.Parallel()

	m := NewModel()
	a := addVertex(t, m, "a", "old")

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)

	if _, err := m.SetValue(a, "new"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	// After execution the change's applied fields describe the current
	// document state and Previous describes what was replaced.
	change, ok := recorder.last().Changes[0].(*ValueChange)
	if !ok {
		t.Fatalf("Expected a ValueChange, got %T", recorder.last().Changes[0])
	}
	if change.Cell != a {
		t.Error("The change should reference the mutated cell")
	}
	if change.Value != "new" {
		t.Errorf("Expected applied value 'new', got %v", change.Value)
	}
	if change.Previous != "old" {
		t.Errorf("Expected previous value 'old', got %v", change.Previous)
	}
}

func TestValueChange_DoubleExecuteIsIdentity(t *testing.T) {
	t.Parallel()

	m := NewModel()
	a := addVertex(t, m, "a", "old")

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)
	if _, err := m.SetValue(a, "new"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	change := recorder.last().Changes[0].(*ValueChange)

	// One more execution undoes, a second redoes.
	change.Execute()
	if a.Value() != "old" {
		t.Errorf("Expected the value rolled back to 'old', got %v", a.Value())
	}
	if change.Value != "old" || change.Previous != "new" {
		t.Error("The swap should track the rollback")
	}

	change.Execute()
	if a.Value() != "new" {
		t.Errorf("Expected the value reapplied to 'new', got %v", a.Value())
	}
	if change.Value != "new" || change.Previous != "old" {
		t.Error("The swap should track the reapply")
	}
}

func TestTerminalChange_AppliedState(t *testing.T) {
	t.Parallel()

	m := NewModel()
	a := addVertex(t, m, "a", "A")
	b := addVertex(t, m, "b", "B")
	c := addVertex(t, m, "c", "C")
	e := addEdge(t, m, "e", a, b)

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)
	if _, err := m.SetTerminal(e, c, false); err != nil {
		t.Fatalf("Failed to rewire: %v", err)
	}

	change, ok := recorder.last().Changes[0].(*TerminalChange)
	if !ok {
		t.Fatalf("Expected a TerminalChange, got %T", recorder.last().Changes[0])
	}
	if change.Cell != e || change.Source {
		t.Error("The change should describe the target end of e")
	}
	if change.Terminal != c {
		t.Error("Applied terminal should be c")
	}
	if change.Previous != b {
		t.Error("Previous terminal should be b")
	}

	change.Execute()
	if e.Target() != b {
		t.Error("Re-executing should restore the old terminal")
	}
	if b.EdgeCount() != 1 || c.EdgeCount() != 0 {
		t.Error("Incident lists should follow the rollback")
	}
}

func TestChildChange_MoveAppliedState(t *testing.T) {
	t.Parallel()

	m := NewModel()
	a := addVertex(t, m, "a", "A")
	group := addVertex(t, m, "group", "Group")
	layer := m.DefaultParent()

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)
	if _, err := m.Add(group, a); err != nil {
		t.Fatalf("Failed to move a: %v", err)
	}

	change, ok := recorder.last().Changes[0].(*ChildChange)
	if !ok {
		t.Fatalf("Expected a ChildChange, got %T", recorder.last().Changes[0])
	}
	if change.Child != a {
		t.Error("The change should reference the moved cell")
	}
	if change.Parent != group || change.Index != 0 {
		t.Errorf("Applied placement should be under group at 0, got %v at %d", change.Parent, change.Index)
	}
	if change.Previous != layer || change.PreviousIndex != 0 {
		t.Errorf("Previous placement should be under the layer at 0, got %v at %d", change.Previous, change.PreviousIndex)
	}

	// Re-execution moves the cell back to its old place.
	change.Execute()
	if a.Parent() != layer || layer.Index(a) != 0 {
		t.Error("Re-executing should restore the old placement")
	}
	change.Execute()
	if a.Parent() != group {
		t.Error("A further execution should reapply the move")
	}
}

func TestChildChange_DetachRecordsConnections(t *testing.T) {
	t.Parallel()

	m := NewModel()
	a := addVertex(t, m, "a", "A")
	b := addVertex(t, m, "b", "B")
	e := addEdge(t, m, "e", a, b)

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)
	if _, err := m.Remove(b); err != nil {
		t.Fatalf("Failed to remove b: %v", err)
	}

	change, ok := recorder.last().Changes[0].(*ChildChange)
	if !ok {
		t.Fatalf("Expected a ChildChange, got %T", recorder.last().Changes[0])
	}
	if change.Parent != nil {
		t.Error("A detachment should have a nil applied parent")
	}
	if change.Previous != m.DefaultParent() {
		t.Error("Previous should be the old parent")
	}

	connections := change.Connections()
	if len(connections) != 1 {
		t.Fatalf("Expected 1 severed connection, got %d", len(connections))
	}
	if connections[0].Edge != e || connections[0].Terminal != b || connections[0].Source {
		t.Errorf("Expected the severed target end of e at b, got %+v", connections[0])
	}
}

func TestChildChange_DetachSubtreeCollectsAllConnections(t *testing.T) {
	t.Parallel()

	m := NewModel()
	group := addVertex(t, m, "group", "Group")
	inner := NewVertex("Inner", NewGeometry(0, 0, 40, 20), nil).WithID("inner")
	if _, err := m.Add(group, inner); err != nil {
		t.Fatalf("Failed to add inner: %v", err)
	}
	outside := addVertex(t, m, "outside", "Outside")

	// One edge inside the subtree, one crossing its boundary.
	internal := NewEdge(nil, nil).WithID("internal")
	if _, err := m.Add(group, internal); err != nil {
		t.Fatalf("Failed to add internal edge: %v", err)
	}
	if err := m.SetTerminals(internal, group, inner); err != nil {
		t.Fatalf("Failed to wire internal edge: %v", err)
	}
	crossing := addEdge(t, m, "crossing", inner, outside)

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)
	if _, err := m.Remove(group); err != nil {
		t.Fatalf("Failed to remove group: %v", err)
	}

	change := recorder.last().Changes[0].(*ChildChange)
	connections := change.Connections()

	// Both ends of the internal edge and both touched ends of the
	// crossing edge are severed; the recorded order is the deterministic
	// depth-first walk.
	if len(connections) != 3 {
		t.Fatalf("Expected 3 severed connections, got %d", len(connections))
	}
	if internal.Source() != nil || internal.Target() != nil {
		t.Error("The internal edge should dangle on both ends")
	}
	if crossing.Source() != nil {
		t.Error("The crossing edge should lose its inside end")
	}
	if crossing.Target() != outside {
		t.Error("The crossing edge should keep its outside end")
	}
	if !m.Contains(crossing) {
		t.Error("The crossing edge lives outside the subtree and should stay")
	}

	// The inverse execution reattaches and rewires everything.
	change.Execute()
	if !m.Contains(group) || !m.Contains(inner) {
		t.Fatal("Re-executing should reattach the subtree")
	}
	if internal.Source() != group || internal.Target() != inner {
		t.Error("The internal edge should be rewired")
	}
	if crossing.Source() != inner || crossing.Target() != outside {
		t.Error("The crossing edge should be rewired")
	}
}

func TestRootChange_AppliedState(t *testing.T) {
	t.Parallel()

	m := NewModel()
	oldRoot := m.Root()
	newRoot := NewRoot()

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)
	if _, err := m.SetRoot(newRoot); err != nil {
		t.Fatalf("Failed to set root: %v", err)
	}

	change, ok := recorder.last().Changes[0].(*RootChange)
	if !ok {
		t.Fatalf("Expected a RootChange, got %T", recorder.last().Changes[0])
	}
	if change.Root != newRoot || change.Previous != oldRoot {
		t.Error("The change should carry the new and the replaced root")
	}

	change.Execute()
	if m.Root() != oldRoot {
		t.Error("Re-executing should restore the old tree")
	}
	if m.CellByID(oldRoot.ID()) != oldRoot {
		t.Error("The registry should follow the root swap")
	}
}

func TestGeometryStyleFlagChanges_AppliedState(t *testing.T) {
	t.Parallel()

	m := NewModel()
	a := addVertex(t, m, "a", "A")
	oldGeometry := a.Geometry()

	recorder := &eventRecorder{}
	m.AddChangeListener(recorder)

	next := NewGeometry(9, 9, 9, 9)
	if _, err := m.SetGeometry(a, next); err != nil {
		t.Fatalf("Failed to set geometry: %v", err)
	}
	gc := recorder.last().Changes[0].(*GeometryChange)
	if gc.Geometry != next || gc.Previous != oldGeometry {
		t.Error("GeometryChange should hold applied and previous geometry")
	}

	style := ParseStyle("shape=ellipse")
	if _, err := m.SetStyle(a, style); err != nil {
		t.Fatalf("Failed to set style: %v", err)
	}
	sc := recorder.last().Changes[0].(*StyleChange)
	if !sc.Style.Equal(style) || sc.Previous != nil {
		t.Error("StyleChange should hold applied and previous style")
	}

	if _, err := m.SetCollapsed(a, true); err != nil {
		t.Fatalf("Failed to collapse: %v", err)
	}
	cc := recorder.last().Changes[0].(*CollapseChange)
	if !cc.Collapsed || cc.Previous {
		t.Error("CollapseChange should hold applied and previous flag")
	}

	if _, err := m.SetVisible(a, false); err != nil {
		t.Fatalf("Failed to hide: %v", err)
	}
	vc := recorder.last().Changes[0].(*VisibleChange)
	if vc.Visible || !vc.Previous {
		t.Error("VisibleChange should hold applied and previous flag")
	}
}
