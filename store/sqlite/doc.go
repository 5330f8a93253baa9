// Package sqlite provides SQLite-backed storage for graphdoc journals.
//
// This package implements journal persistence using SQLite, a good fit for
// applications that want durable change history with a lightweight,
// serverless database and zero external infrastructure.
//
// # Key Features
//
//   - Serverless, file-based database
//   - ACID transaction support
//   - Zero configuration needed
//   - Cross-platform compatibility
//   - Embedded database (no separate server process)
//   - One row per journal record, upserted by (document_id, seq)
//   - Custom table names for multi-tenant schemas
//
// # Basic Usage
//
//	import (
//		"context"
//
//		"github.com/smallnest/graphdoc/graph"
//		"github.com/smallnest/graphdoc/store/sqlite"
//	)
//
//	// Create a SQLite journal store
//	js, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path:      "./journal.db",    // Database file path
//		TableName: "journal_records", // Optional table name
//	})
//	if err != nil {
//		return err
//	}
//	defer js.Close()
//
//	// Record every committed edit of a document
//	model := graph.NewModel()
//	recorder, err := graph.NewJournalRecorder(context.Background(), model, js, "doc-1")
//	if err != nil {
//		return err
//	}
//	model.AddChangeListener(recorder)
//
//	// Later, rebuild the document from its journal
//	restored, err := graph.ReplayJournal(context.Background(), js, "doc-1")
//
// # Configuration
//
// ## Database File Options
//
//	// In-memory database (volatile)
//	js, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path: ":memory:",
//	})
//
//	// Persistent file database
//	js, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path: "./data/journal.db",
//	})
//
//	// With custom URI options
//	js, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path: "file:./journal.db?cache=shared&mode=rwc",
//	})
//
// ## Custom Table Name
//
//	// Keep several journals in one database file
//	drafts, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path:      "./journal.db",
//		TableName: "draft_records",
//	})
//
// The schema is created on construction via InitSchema, so a fresh
// database file is usable immediately.
//
// # Development and Testing
//
//	// In-memory database for tests
//	js, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path: ":memory:",
//	})
//	if err != nil {
//		t.Fatal(err)
//	}
//	defer js.Close()
//
//	// Or use shared in-memory for multiple connections
//	js, err := sqlite.NewSqliteJournalStore(sqlite.SqliteOptions{
//		Path: "file::memory:?cache=shared",
//	})
//
// # Best Practices
//
//  1. Close the store when done
//  2. Use one table per logical journal collection
//  3. Prefer a persistent file path in production (":memory:" loses history)
//  4. Regularly run VACUUM on long-lived journal databases
//  5. Back up with a simple file copy while the application is stopped
//
// # Comparison with Other Stores
//
// | Feature            | SQLite Store | Redis Store   | PostgreSQL Store |
// |--------------------|--------------|---------------|------------------|
// | Performance        | Medium       | Very High     | High             |
// | Memory Usage       | Low          | High          | Low              |
// | Concurrency        | Limited      | High          | High             |
// | Persistence        | Yes          | Optional      | Yes              |
// | Query Capabilities | SQL          | Basic         | Advanced SQL     |
// | Setup Complexity   | None         | Low           | Medium           |
// | Best For           | Small/Medium | High-speed    | Enterprise       |
// | Backup             | Simple copy  | Export/Import | pg_dump          |
package sqlite
