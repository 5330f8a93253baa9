package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
		Changes: []store.ChangeRecord{{
			Kind: store.ChangeKindValue,
			Cell: "cell-1",
			Data: json.RawMessage(`{"value":"hello"}`),
		}},
		Fingerprint: fmt.Sprintf("fp-%d", seq),
		Timestamp:   time.Now(),
		Metadata: map[string]any{
			"editor": "alice",
		},
	}
}

func TestMemoryJournalStore_New(t *testing.T) {
	t.Parallel()

	ms := NewMemoryJournalStore()
	if ms == nil {
		t.Fatal("Store should not be nil")
	}

	// Verify it implements the interface
	var _ store.JournalStore = ms
}

func TestMemoryJournalStore_BasicOperations(t *testing.T) {
	t.Parallel()

	t.Run("save and load", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		record := testRecord("flowchart-1", 1)
		if err := ms.Save(ctx, record); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		loaded, err := ms.Load(ctx, "flowchart-1", 1)
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}

		if loaded.ID != record.ID {
			t.Errorf("ID mismatch: got %s, want %s", loaded.ID, record.ID)
		}
		if loaded.Origin != store.OriginCommit {
			t.Errorf("Origin mismatch: got %s", loaded.Origin)
		}
		if loaded.Fingerprint != record.Fingerprint {
			t.Errorf("Fingerprint mismatch: got %s", loaded.Fingerprint)
		}
		if len(loaded.Changes) != 1 || loaded.Changes[0].Kind != store.ChangeKindValue {
			t.Errorf("Changes not preserved: %+v", loaded.Changes)
		}
		if editor, ok := loaded.Metadata["editor"].(string); !ok || editor != "alice" {
			t.Error("Metadata not preserved correctly")
		}
	})

	t.Run("load missing returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		_, err := ms.Load(ctx, "ghost-doc", 1)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save overwrites same sequence", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		first := testRecord("doc", 3)
		if err := ms.Save(ctx, first); err != nil {
			t.Fatalf("Failed to save first: %v", err)
		}

		second := testRecord("doc", 3)
		second.Fingerprint = "fp-updated"
		if err := ms.Save(ctx, second); err != nil {
			t.Fatalf("Failed to save second: %v", err)
		}

		loaded, err := ms.Load(ctx, "doc", 3)
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if loaded.Fingerprint != "fp-updated" {
			t.Errorf("Expected overwritten record, got fingerprint %s", loaded.Fingerprint)
		}
	})

	t.Run("loaded record is a copy", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		if err := ms.Save(ctx, testRecord("doc", 1)); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		loaded, _ := ms.Load(ctx, "doc", 1)
		loaded.Metadata["editor"] = "mallory"
		loaded.Changes[0].Kind = "tampered"

		reloaded, _ := ms.Load(ctx, "doc", 1)
		if reloaded.Metadata["editor"] != "alice" {
			t.Error("Mutating a loaded record leaked into the store")
		}
		if reloaded.Changes[0].Kind != store.ChangeKindValue {
			t.Error("Mutating loaded changes leaked into the store")
		}
	})
}

func TestMemoryJournalStore_List(t *testing.T) {
	t.Parallel()

	t.Run("returns records in sequence order", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		// Save deliberately out of order
		for _, seq := range []uint64{3, 1, 2} {
			if err := ms.Save(ctx, testRecord("pipeline-doc", seq)); err != nil {
				t.Fatalf("Failed to save seq %d: %v", seq, err)
			}
		}

		records, err := ms.List(ctx, "pipeline-doc")
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		for i, record := range records {
			if record.Seq != uint64(i+1) {
				t.Errorf("Record %d has seq %d, want %d", i, record.Seq, i+1)
			}
		}
	})

	t.Run("empty for unknown document", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		records, err := ms.List(ctx, "ghost-doc")
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected 0 records, got %d", len(records))
		}
	})

	t.Run("documents are isolated", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		_ = ms.Save(ctx, testRecord("doc-a", 1))
		_ = ms.Save(ctx, testRecord("doc-a", 2))
		_ = ms.Save(ctx, testRecord("doc-b", 1))

		aRecords, _ := ms.List(ctx, "doc-a")
		bRecords, _ := ms.List(ctx, "doc-b")
		if len(aRecords) != 2 {
			t.Errorf("doc-a should have 2 records, got %d", len(aRecords))
		}
		if len(bRecords) != 1 {
			t.Errorf("doc-b should have 1 record, got %d", len(bRecords))
		}
	})
}

func TestMemoryJournalStore_Delete(t *testing.T) {
	t.Parallel()

	t.Run("delete existing", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		for seq := uint64(1); seq <= 3; seq++ {
			if err := ms.Save(ctx, testRecord("doc", seq)); err != nil {
				t.Fatalf("Failed to save seq %d: %v", seq, err)
			}
		}

		if err := ms.Delete(ctx, "doc", 2); err != nil {
			t.Errorf("Delete failed: %v", err)
		}

		if _, err := ms.Load(ctx, "doc", 2); !errors.Is(err, store.ErrNotFound) {
			t.Error("Deleted record should not load")
		}
		if _, err := ms.Load(ctx, "doc", 1); err != nil {
			t.Error("seq 1 should still exist")
		}
		if _, err := ms.Load(ctx, "doc", 3); err != nil {
			t.Error("seq 3 should still exist")
		}
	})

	t.Run("delete missing is no-op", func(t *testing.T) {
		t.Parallel()

		ms := NewMemoryJournalStore()
		ctx := context.Background()

		if err := ms.Delete(ctx, "never-existed", 1); err != nil {
			t.Errorf("Should not error for missing record: %v", err)
		}
	})
}

func TestMemoryJournalStore_Clear(t *testing.T) {
	t.Parallel()

	ms := NewMemoryJournalStore()
	ctx := context.Background()

	for seq := uint64(1); seq <= 3; seq++ {
		_ = ms.Save(ctx, testRecord("doc-a", seq))
	}
	_ = ms.Save(ctx, testRecord("doc-b", 1))

	if err := ms.Clear(ctx, "doc-a"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	aRecords, _ := ms.List(ctx, "doc-a")
	if len(aRecords) != 0 {
		t.Errorf("doc-a should be empty, has %d", len(aRecords))
	}

	bRecords, _ := ms.List(ctx, "doc-b")
	if len(bRecords) != 1 {
		t.Errorf("doc-b should be untouched, has %d", len(bRecords))
	}
}

func TestMemoryJournalStore_Concurrency(t *testing.T) {
	t.Parallel()

	ms := NewMemoryJournalStore()
	ctx := context.Background()

	numWriters := 8
	recordsPerWriter := 20

	done := make(chan bool, numWriters)
	errs := make(chan error, numWriters)

	for i := 0; i < numWriters; i++ {
		go func(writerID int) {
			defer func() { done <- true }()

			documentID := fmt.Sprintf("doc-%d", writerID)
			for j := 0; j < recordsPerWriter; j++ {
				seq := uint64(j + 1)
				if err := ms.Save(ctx, testRecord(documentID, seq)); err != nil {
					errs <- fmt.Errorf("writer %d save seq %d: %v", writerID, seq, err)
					return
				}
				if _, err := ms.Load(ctx, documentID, seq); err != nil {
					errs <- fmt.Errorf("writer %d load seq %d: %v", writerID, seq, err)
					return
				}
			}
		}(i)
	}

	for i := 0; i < numWriters; i++ {
		select {
		case <-done:
		case err := <-errs:
			t.Errorf("Worker error: %v", err)
		case <-time.After(10 * time.Second):
			t.Fatal("Test timed out")
		}
	}

	for i := 0; i < numWriters; i++ {
		records, err := ms.List(ctx, fmt.Sprintf("doc-%d", i))
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != recordsPerWriter {
			t.Errorf("doc-%d should have %d records, got %d", i, recordsPerWriter, len(records))
		}
	}
}
