// Package graph provides a transactional diagram document model with
// command-based undo and redo.
//
// This package implements the fundamental building blocks for editing
// connected diagrams: a cell tree that mixes vertices, edges and groups, a
// model that turns every mutation into a self-inverting change, update
// scopes that batch changes into atomic edits, and an undo manager that
// replays edits over a linear history.
//
// # Core Concepts
//
// ## Cells
// A document is a tree of cells rooted at a root cell, with diagram cells
// living under layer cells. A cell may be a vertex, an edge or a plain
// group; edges additionally reference a source and a target terminal and
// appear in the incident-edge list of each terminal. Child order is
// z-order.
//
// ## Changes and Edits
// Every mutation executes as a Change whose second execution reverses its
// first, so undo never needs state snapshots. Changes made between
// BeginUpdate and the matching EndUpdate accumulate into one UndoableEdit
// committed atomically when the outermost scope closes, with a single
// ChangeEvent delivered to listeners.
//
// ## Undo and History
// UndoManager records committed edits into a linear history with a cursor.
// Undo walks the cursor back, redo walks it forward, and committing a new
// edit truncates everything ahead of the cursor.
//
// ## Journaling
// JournalRecorder serializes every event into durable journal records, and
// ReplayJournal rebuilds a document from them, verifying a BLAKE3
// fingerprint after each step. Backends for the journal live under the
// store packages.
//
// # Key Features
//
//   - Self-inverting change records for value, geometry, style, collapse,
//     visibility, terminal, child and root mutations
//   - Nested update scopes with one notification per outermost commit
//   - Removal that severs and restores every edge touching the removed
//     subtree, including edges that point into it from outside
//   - Cycle and index validation with a sentinel error family
//   - Deep cloning with terminal remapping inside the cloned set
//   - Content fingerprints for cheap state comparison
//
// # Example Usage
//
// ## Building and Editing a Document
//
//	m := graph.NewModel()
//	parent := m.DefaultParent()
//
//	a, _ := m.Add(parent, graph.NewVertex("A", graph.NewGeometry(20, 20, 80, 30), nil))
//	b, _ := m.Add(parent, graph.NewVertex("B", graph.NewGeometry(200, 20, 80, 30), nil))
//
//	e, _ := m.Add(parent, graph.NewEdge("flows", nil))
//	m.SetTerminals(e, a, b)
//
// ## Batching and Undo
//
//	um := graph.NewUndoManager(100)
//	m.AddChangeListener(um)
//
//	m.BatchUpdate(func() error {
//		m.SetValue(a, "A2")
//		m.SetGeometry(a, graph.NewGeometry(40, 40, 80, 30))
//		return nil
//	})
//
//	um.Undo() // both changes roll back as one step
//	um.Redo()
//
// ## Journaling to a Store
//
//	st := memory.NewMemoryJournalStore()
//	rec, _ := graph.NewJournalRecorder(ctx, m, st, "doc-1")
//	m.AddChangeListener(rec)
//
//	// ... edit the document ...
//
//	replayed, _ := graph.ReplayJournal(ctx, st, "doc-1")
//
// # Thread Safety
//
// A Model must be mutated from a single goroutine. Listener registration
// is safe from any goroutine; delivery is synchronous on the mutating
// goroutine, in registration order.
package graph
