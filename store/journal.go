package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Origin values a journal record may carry, mirroring the document event
// origins plus the synthetic snapshot record a fresh journal starts with.
const (
	OriginCommit   = "commit"
	OriginUndo     = "undo"
	OriginRedo     = "redo"
	OriginSnapshot = "snapshot"
)

// Change record kinds. Each kind pairs with a JSON payload in
// ChangeRecord.Data; the document package owns the payload shapes.
const (
	ChangeKindRoot     = "root"
	ChangeKindAttach   = "attach"
	ChangeKindDetach   = "detach"
	ChangeKindMove     = "move"
	ChangeKindTerminal = "terminal"
	ChangeKindValue    = "value"
	ChangeKindGeometry = "geometry"
	ChangeKindStyle    = "style"
	ChangeKindCollapse = "collapse"
	ChangeKindVisible  = "visible"
)

// ErrNotFound is returned when a requested journal record does not exist.
var ErrNotFound = errors.New("store: journal record not found")

// ChangeRecord is one serialized document change
type ChangeRecord struct {
	Kind string          `json:"kind"`
	Cell string          `json:"cell"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JournalRecord captures one committed, undone or redone edit of a
// document, in replayable form
type JournalRecord struct {
	ID          string         `json:"id"`
	DocumentID  string         `json:"document_id"`
	Seq         uint64         `json:"seq"`
	Origin      string         `json:"origin"`
	Changes     []ChangeRecord `json:"changes"`
	Fingerprint string         `json:"fingerprint"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// JournalStore defines the interface for journal persistence
type JournalStore interface {
	// Save stores a journal record
	Save(ctx context.Context, record *JournalRecord) error

	// Load retrieves one record of a document by sequence number
	Load(ctx context.Context, documentID string, seq uint64) (*JournalRecord, error)

	// List returns all records for a document in ascending sequence order
	List(ctx context.Context, documentID string) ([]*JournalRecord, error)

	// Delete removes one record of a document
	Delete(ctx context.Context, documentID string, seq uint64) error

	// Clear removes all records for a document
	Clear(ctx context.Context, documentID string) error
}
