// GraphDoc - Transactional Diagram Documents in Go
//
// GraphDoc is a Go library for editing diagram documents through undoable
// change records. A document is a tree of cells with vertices, edges and
// groups; every mutation is captured as a self-inverting change, grouped
// into atomic edits, recorded for undo and redo, and journaled so any
// backend can replay the exact document back from its history.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/graphdoc
//
// Basic example:
//
//	package main
//
//	import (
//		"fmt"
//
//		"github.com/smallnest/graphdoc/export"
//		"github.com/smallnest/graphdoc/graph"
//	)
//
//	func main() {
//		m := graph.NewModel()
//		parent := m.DefaultParent()
//
//		start, _ := m.Add(parent, graph.NewVertex("Start", graph.NewGeometry(0, 0, 100, 40), nil))
//		done, _ := m.Add(parent, graph.NewVertex("Done", graph.NewGeometry(200, 0, 100, 40), nil))
//
//		edge, _ := m.Add(parent, graph.NewEdge("finish", nil))
//		m.SetTerminals(edge, start, done)
//
//		fmt.Print(export.NewExporter(m).DrawMermaid())
//	}
//
// # Key Features
//
//   - Change Records: Every mutation is a self-inverting change that
//     undoes by re-executing
//   - Atomic Edits: Nested update scopes commit as one step with a
//     single notification
//   - Undo and Redo: Linear history with a configurable capacity
//   - Journaling: Every edit persists as a replayable record
//   - Replay: Rebuild a document from nothing but its journal, with
//     fingerprint verification at every step
//   - Folding: Collapse groups with a geometry swap that undoes cleanly
//   - Export: Mermaid, Graphviz DOT and styled tree renderings
//
// # Core Concepts
//
// # Document Structure
//
// A document is a cell tree:
//   - The root holds one or more layers
//   - Layers hold vertices, edges and groups
//   - Edges connect a source and a target terminal anywhere in the tree
//
// # Change Records
//
// Mutations never touch cells directly. Each one builds a change whose
// Execute swaps the applied state with the previous state, so executing
// twice is the identity. Undo is just Execute on every change of an
// edit, in reverse order.
//
// # Update Scopes
//
// BeginUpdate and EndUpdate nest. Changes collect into the current edit
// and listeners hear exactly one notification when the outermost scope
// closes:
//
//	m.BatchUpdate(func() error {
//		if _, err := m.SetValue(cell, "renamed"); err != nil {
//			return err
//		}
//		_, err := m.SetGeometry(cell, geometry)
//		return err
//	})
//
// # Package Structure
//
// graph/
// The document core: cells, geometry, styles, changes, the model, undo
// history, journaling and replay
//
//	um := graph.NewUndoManager(graph.DefaultHistorySize)
//	m.AddChangeListener(um)
//
//	m.SetValue(cell, "renamed")
//	um.Undo()
//	um.Redo()
//
// store/
// The journal record shapes and persistence backends
//
// Options:
//   - Memory: For tests and short-lived sessions
//   - File: One zstd-compressed JSON file per record
//   - SQLite: Lightweight, file-based storage
//   - PostgreSQL: Scalable relational database
//   - Redis: High-performance in-memory storage
//
// Example:
//
//	st, _ := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{Path: "journal.db"})
//	recorder, _ := graph.NewJournalRecorder(ctx, m, st, "doc-1")
//	m.AddChangeListener(recorder)
//
//	// Later, anywhere:
//	replayed, _ := graph.ReplayJournal(ctx, st, "doc-1")
//
// editor/
// Configuration plus the capability surfaces applications edit through:
// folding, label editing and terminal queries
//
//	ed := editor.NewEditor(editor.DefaultConfig())
//	ed.Fold(group, false)
//	cells, _ := ed.Match("**/checkout/*")
//
// export/
// Renderings of a document for humans and tools
//
//	ex := export.NewExporter(m)
//	fmt.Print(ex.DrawMermaid())
//	fmt.Print(ex.DrawDOT())
//	fmt.Print(ex.DrawTree())
//
// label/
// Cell value rendering: plain text extraction and sanitized markdown
//
//	label.PlainText("<b>Checkout</b>")        // "Checkout"
//	label.RenderHTML("**bold** move")         // sanitized HTML
//
// log/
// Logging interface with a golog adapter
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//	m.SetLogger(logger)
//
// # Command Line
//
// The graphdoc CLI edits documents interactively and replays journals:
//
//	graphdoc repl --record my-doc --store sqlite --db journal.db
//	graphdoc replay my-doc --store sqlite --db journal.db
//	graphdoc export my-doc --format mermaid
//
// # Configuration
//
// The editor reads YAML configuration:
//
//	editable: true
//	folding_enabled: true
//	html_labels: false
//	collapsed_width: 80
//	collapsed_height: 30
//	history_size: 100
//	log_level: info
//
// # Community and Support
//
//   - GitHub: https://github.com/smallnest/graphdoc
//   - Documentation: https://pkg.go.dev/github.com/smallnest/graphdoc
//   - Examples: ./examples directory
//   - Issues: Report bugs and request features on GitHub
//
// # License
//
// This project is licensed under the MIT License - see the LICENSE file for details.
package graphdoc // import "github.com/smallnest/graphdoc"
