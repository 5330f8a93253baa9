package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallnest/graphdoc/store"
)

func testRecord(documentID string, seq uint64) *store.JournalRecord {
	return &store.JournalRecord{
		ID:         fmt.Sprintf("%s-%d", documentID, seq),
		DocumentID: documentID,
		Seq:        seq,
		Origin:     store.OriginCommit,
		Changes: []store.ChangeRecord{
			{Kind: store.ChangeKindValue, Cell: "cell-1", Data: []byte(`{"value":"hello"}`)},
		},
		Fingerprint: fmt.Sprintf("fp-%d", seq),
		Timestamp:   time.Now().UTC(),
		Metadata:    map[string]any{"user": "alice"},
	}
}

func newTestStore(t *testing.T) *SqliteJournalStore {
	t.Helper()

	js, err := NewSqliteJournalStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "journal.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { js.Close() })
	return js
}

func TestSqliteJournalStore_New(t *testing.T) {
	t.Parallel()

	js := newTestStore(t)
	var _ store.JournalStore = js
}

func TestSqliteJournalStore_BasicOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		record := testRecord("doc-1", 1)
		if err := js.Save(ctx, record); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}

		loaded, err := js.Load(ctx, "doc-1", 1)
		if err != nil {
			t.Fatalf("failed to load record: %v", err)
		}
		if loaded.ID != record.ID {
			t.Errorf("expected ID %q, got %q", record.ID, loaded.ID)
		}
		if loaded.Origin != store.OriginCommit {
			t.Errorf("expected origin %q, got %q", store.OriginCommit, loaded.Origin)
		}
		if len(loaded.Changes) != 1 {
			t.Fatalf("expected 1 change, got %d", len(loaded.Changes))
		}
		if loaded.Changes[0].Cell != "cell-1" {
			t.Errorf("expected cell %q, got %q", "cell-1", loaded.Changes[0].Cell)
		}
		if loaded.Metadata["user"] != "alice" {
			t.Errorf("expected metadata user alice, got %v", loaded.Metadata["user"])
		}
	})

	t.Run("load missing record", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		if _, err := js.Load(ctx, "doc-1", 42); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save nil record", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		if err := js.Save(ctx, nil); err == nil {
			t.Error("expected error for nil record")
		}
	})

	t.Run("overwrite same sequence", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		if err := js.Save(ctx, testRecord("doc-1", 1)); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}

		second := testRecord("doc-1", 1)
		second.Fingerprint = "fp-rewritten"
		if err := js.Save(ctx, second); err != nil {
			t.Fatalf("failed to overwrite record: %v", err)
		}

		loaded, err := js.Load(ctx, "doc-1", 1)
		if err != nil {
			t.Fatalf("failed to load record: %v", err)
		}
		if loaded.Fingerprint != "fp-rewritten" {
			t.Errorf("expected overwritten fingerprint, got %q", loaded.Fingerprint)
		}

		records, err := js.List(ctx, "doc-1")
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected a single record after overwrite, got %d", len(records))
		}
	})
}

func TestSqliteJournalStore_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns records in sequence order", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		for _, seq := range []uint64{3, 1, 2} {
			if err := js.Save(ctx, testRecord("doc-1", seq)); err != nil {
				t.Fatalf("failed to save record %d: %v", seq, err)
			}
		}

		records, err := js.List(ctx, "doc-1")
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		for i, record := range records {
			if record.Seq != uint64(i+1) {
				t.Errorf("expected seq %d at position %d, got %d", i+1, i, record.Seq)
			}
		}
	})

	t.Run("unknown document is empty", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		records, err := js.List(ctx, "missing")
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("documents are isolated", func(t *testing.T) {
		t.Parallel()

		js := newTestStore(t)
		if err := js.Save(ctx, testRecord("doc-1", 1)); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}
		if err := js.Save(ctx, testRecord("doc-2", 1)); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}

		records, err := js.List(ctx, "doc-1")
		if err != nil {
			t.Fatalf("failed to list records: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].DocumentID != "doc-1" {
			t.Errorf("expected document doc-1, got %q", records[0].DocumentID)
		}
	})
}

func TestSqliteJournalStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	js := newTestStore(t)

	if err := js.Save(ctx, testRecord("doc-1", 1)); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}
	if err := js.Delete(ctx, "doc-1", 1); err != nil {
		t.Fatalf("failed to delete record: %v", err)
	}
	if _, err := js.Load(ctx, "doc-1", 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing record is not an error.
	if err := js.Delete(ctx, "doc-1", 99); err != nil {
		t.Errorf("unexpected error deleting missing record: %v", err)
	}
}

func TestSqliteJournalStore_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	js := newTestStore(t)

	for seq := uint64(1); seq <= 3; seq++ {
		if err := js.Save(ctx, testRecord("doc-1", seq)); err != nil {
			t.Fatalf("failed to save record %d: %v", seq, err)
		}
	}
	if err := js.Save(ctx, testRecord("doc-2", 1)); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	if err := js.Clear(ctx, "doc-1"); err != nil {
		t.Fatalf("failed to clear document: %v", err)
	}

	records, err := js.List(ctx, "doc-1")
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected cleared document to be empty, got %d records", len(records))
	}

	others, err := js.List(ctx, "doc-2")
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(others) != 1 {
		t.Errorf("expected other document to survive, got %d records", len(others))
	}
}

func TestSqliteJournalStore_Persistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	js, err := NewSqliteJournalStore(SqliteOptions{Path: path})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	for seq := uint64(1); seq <= 2; seq++ {
		if err := js.Save(ctx, testRecord("doc-1", seq)); err != nil {
			t.Fatalf("failed to save record %d: %v", seq, err)
		}
	}
	if err := js.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := NewSqliteJournalStore(SqliteOptions{Path: path})
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.List(ctx, "doc-1")
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after reopen, got %d", len(records))
	}
	if records[0].Seq != 1 || records[1].Seq != 2 {
		t.Errorf("expected sequences 1 and 2, got %d and %d", records[0].Seq, records[1].Seq)
	}
}

func TestSqliteJournalStore_CustomTableName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	drafts, err := NewSqliteJournalStore(SqliteOptions{Path: path, TableName: "draft_records"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer drafts.Close()

	published, err := NewSqliteJournalStore(SqliteOptions{Path: path, TableName: "published_records"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer published.Close()

	if err := drafts.Save(ctx, testRecord("doc-1", 1)); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	records, err := published.List(ctx, "doc-1")
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected tables to be isolated, got %d records", len(records))
	}
}
