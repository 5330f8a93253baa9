package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/graphdoc/log"
	"github.com/smallnest/graphdoc/store"
)

// JournalStore is re-exported from the store package for convenience.
type JournalStore = store.JournalStore

// JournalRecord is re-exported from the store package for convenience.
type JournalRecord = store.JournalRecord

// ChangeRecord is re-exported from the store package for convenience.
type ChangeRecord = store.ChangeRecord

// Payload shapes for the change record kinds. Every payload describes the
// state after the change executed, so a journal replays forward no matter
// whether the source event was a commit, an undo or a redo.
type (
	valuePayload struct {
		Value json.RawMessage `json:"value"`
	}

	geometryPayload struct {
		Geometry *Geometry `json:"geometry"`
	}

	stylePayload struct {
		Style Style `json:"style"`
	}

	collapsePayload struct {
		Collapsed bool `json:"collapsed"`
	}

	visiblePayload struct {
		Visible bool `json:"visible"`
	}

	terminalPayload struct {
		Terminal string `json:"terminal,omitempty"`
		Source   bool   `json:"source"`
	}

	movePayload struct {
		Parent string `json:"parent"`
		Index  int    `json:"index"`
	}

	detachPayload struct {
		Parent string `json:"parent,omitempty"`
	}

	attachPayload struct {
		Parent      string             `json:"parent"`
		Index       int                `json:"index"`
		Cell        *CellSnapshot      `json:"cell"`
		Connections []connectionRecord `json:"connections,omitempty"`
	}

	rootPayload struct {
		Root *CellSnapshot `json:"root"`
	}

	connectionRecord struct {
		Edge     string `json:"edge"`
		Terminal string `json:"terminal"`
		Source   bool   `json:"source"`
	}
)

// JournalRecorder listens on a document and appends one journal record per
// change event to a JournalStore. A fresh journal starts with a snapshot
// record of the document as it was when recording began, so replay always
// reconstructs from an empty model with matching cell IDs.
//
// Persistence failures do not interrupt editing: the recorder logs the
// error, stops recording and keeps it available through Err.
type JournalRecorder struct {
	ctx            context.Context
	model          *Model
	store          JournalStore
	documentID     string
	seq            uint64
	err            error
	logger         log.Logger
	recordUndoRedo bool
}

// NewJournalRecorder creates a recorder for model writing to st under
// documentID. An empty journal receives an initial snapshot record; a
// non-empty one is continued after its last sequence number. Register the
// recorder with Model.AddChangeListener to start recording.
func NewJournalRecorder(ctx context.Context, model *Model, st JournalStore, documentID string) (*JournalRecorder, error) {
	if model == nil || st == nil {
		return nil, fmt.Errorf("graph: journal recorder needs a model and a store")
	}
	r := &JournalRecorder{
		ctx:            ctx,
		model:          model,
		store:          st,
		documentID:     documentID,
		logger:         log.GetDefaultLogger(),
		recordUndoRedo: true,
	}

	records, err := st.List(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("graph: listing journal %q: %w", documentID, err)
	}
	if len(records) > 0 {
		r.seq = records[len(records)-1].Seq
		return r, nil
	}

	snapshot, err := r.snapshotRecord()
	if err != nil {
		return nil, err
	}
	if err := st.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("graph: writing journal snapshot: %w", err)
	}
	r.seq = snapshot.Seq
	return r, nil
}

// DocumentID returns the journal's document identifier.
func (r *JournalRecorder) DocumentID() string { return r.documentID }

// Seq returns the sequence number of the last written record.
func (r *JournalRecorder) Seq() uint64 { return r.seq }

// Err returns the first persistence or encoding error, nil while the
// recorder is healthy. A failed recorder ignores further events.
func (r *JournalRecorder) Err() error { return r.err }

// SetRecordUndoRedo controls whether undo and redo replays are journaled.
// Recording them is the default and keeps the journal replayable to the
// live document; with recording off the journal is an audit trail of
// committed edits only, and replay fingerprints diverge after the first
// skipped event.
func (r *JournalRecorder) SetRecordUndoRedo(record bool) {
	r.recordUndoRedo = record
}

// ModelChanged implements ChangeListener by appending the event to the
// journal.
func (r *JournalRecorder) ModelChanged(event *ChangeEvent) {
	if r.err != nil {
		return
	}
	if !r.recordUndoRedo && event != nil && (event.Origin == OriginUndo || event.Origin == OriginRedo) {
		return
	}
	record, err := r.encodeEvent(event)
	if err != nil {
		r.fail(fmt.Errorf("graph: encoding journal record: %w", err))
		return
	}
	if err := r.store.Save(r.ctx, record); err != nil {
		r.fail(fmt.Errorf("graph: writing journal record %d: %w", record.Seq, err))
		return
	}
	r.seq = record.Seq
}

func (r *JournalRecorder) fail(err error) {
	r.err = err
	r.logger.Error("journal %s stopped: %v", r.documentID, err)
}

// snapshotRecord freezes the current document into the journal's first
// record: a single root change that replaces the fresh replay model with
// this document's tree.
func (r *JournalRecorder) snapshotRecord() (*JournalRecord, error) {
	data, err := json.Marshal(rootPayload{Root: r.model.Snapshot()})
	if err != nil {
		return nil, fmt.Errorf("graph: encoding journal snapshot: %w", err)
	}
	return &JournalRecord{
		ID:         uuid.NewString(),
		DocumentID: r.documentID,
		Seq:        1,
		Origin:     store.OriginSnapshot,
		Changes: []ChangeRecord{{
			Kind: store.ChangeKindRoot,
			Cell: r.model.Root().ID(),
			Data: data,
		}},
		Fingerprint: r.model.Fingerprint(),
		Timestamp:   time.Now(),
	}, nil
}

// encodeEvent serializes the event's changes in the order they executed
// for this notification. An undo runs the edit backwards, so its records
// are written reversed; replaying any record's changes front to back then
// reproduces exactly what the document did.
func (r *JournalRecorder) encodeEvent(event *ChangeEvent) (*JournalRecord, error) {
	ordered := event.Changes
	if event.Origin == OriginUndo {
		ordered = make([]Change, len(event.Changes))
		for i, change := range event.Changes {
			ordered[len(ordered)-1-i] = change
		}
	}

	changes := make([]ChangeRecord, 0, len(ordered))
	for _, change := range ordered {
		record, err := encodeChange(change)
		if err != nil {
			return nil, err
		}
		changes = append(changes, record)
	}
	return &JournalRecord{
		ID:          uuid.NewString(),
		DocumentID:  r.documentID,
		Seq:         r.seq + 1,
		Origin:      string(event.Origin),
		Changes:     changes,
		Fingerprint: r.model.Fingerprint(),
		Timestamp:   event.Timestamp,
	}, nil
}

// encodeChange serializes one executed change. The change's applied-state
// fields hold the document's current values, which is exactly what the
// record must replay.
func encodeChange(change Change) (ChangeRecord, error) {
	switch ch := change.(type) {
	case *ValueChange:
		// Typed values go through the value registry so replay can
		// rehydrate them instead of returning generic maps.
		raw, err := store.MarshalValue(ch.Value)
		if err != nil {
			return ChangeRecord{}, fmt.Errorf("graph: encoding cell value: %w", err)
		}
		return payloadRecord(store.ChangeKindValue, ch.Cell.ID(), valuePayload{Value: raw})
	case *GeometryChange:
		return payloadRecord(store.ChangeKindGeometry, ch.Cell.ID(), geometryPayload{Geometry: ch.Geometry})
	case *StyleChange:
		return payloadRecord(store.ChangeKindStyle, ch.Cell.ID(), stylePayload{Style: ch.Style})
	case *CollapseChange:
		return payloadRecord(store.ChangeKindCollapse, ch.Cell.ID(), collapsePayload{Collapsed: ch.Collapsed})
	case *VisibleChange:
		return payloadRecord(store.ChangeKindVisible, ch.Cell.ID(), visiblePayload{Visible: ch.Visible})
	case *TerminalChange:
		payload := terminalPayload{Source: ch.Source}
		if ch.Terminal != nil {
			payload.Terminal = ch.Terminal.ID()
		}
		return payloadRecord(store.ChangeKindTerminal, ch.Cell.ID(), payload)
	case *RootChange:
		return payloadRecord(store.ChangeKindRoot, ch.Root.ID(), rootPayload{Root: snapshotCell(ch.Root)})
	case *ChildChange:
		return encodeChildChange(ch)
	default:
		return ChangeRecord{}, fmt.Errorf("graph: unsupported change type %T", change)
	}
}

func encodeChildChange(ch *ChildChange) (ChangeRecord, error) {
	switch {
	case ch.Parent == nil:
		payload := detachPayload{}
		if ch.Previous != nil {
			payload.Parent = ch.Previous.ID()
		}
		return payloadRecord(store.ChangeKindDetach, ch.Child.ID(), payload)
	case ch.Previous == nil:
		payload := attachPayload{
			Parent: ch.Parent.ID(),
			Index:  ch.Index,
			Cell:   snapshotCell(ch.Child),
		}
		for _, conn := range ch.Connections() {
			payload.Connections = append(payload.Connections, connectionRecord{
				Edge:     conn.Edge.ID(),
				Terminal: conn.Terminal.ID(),
				Source:   conn.Source,
			})
		}
		return payloadRecord(store.ChangeKindAttach, ch.Child.ID(), payload)
	default:
		return payloadRecord(store.ChangeKindMove, ch.Child.ID(), movePayload{
			Parent: ch.Parent.ID(),
			Index:  ch.Index,
		})
	}
}

func payloadRecord(kind, cellID string, payload any) (ChangeRecord, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("graph: encoding %s payload: %w", kind, err)
	}
	return ChangeRecord{Kind: kind, Cell: cellID, Data: data}, nil
}
