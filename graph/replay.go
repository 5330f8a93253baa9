package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smallnest/graphdoc/store"
)

// ReplayJournal rebuilds a document by applying every journal record of
// documentID, in sequence order, to a fresh model. After each record the
// document fingerprint is checked against the one stored with the record,
// so silent divergence fails fast with ErrFingerprintMismatch.
func ReplayJournal(ctx context.Context, st JournalStore, documentID string) (*Model, error) {
	records, err := st.List(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("graph: listing journal %q: %w", documentID, err)
	}
	m := NewModel()
	for _, record := range records {
		if err := ApplyRecord(m, record); err != nil {
			return nil, fmt.Errorf("graph: replaying record %d: %w", record.Seq, err)
		}
		if record.Fingerprint != "" && m.Fingerprint() != record.Fingerprint {
			return nil, fmt.Errorf("%w: record %d", ErrFingerprintMismatch, record.Seq)
		}
	}
	return m, nil
}

// ApplyRecord applies one journal record to m as a single edit. The
// changes run front to back; the recorder wrote them in execution order,
// so commits, undos and redos all replay the same way.
func ApplyRecord(m *Model, record *JournalRecord) error {
	if record == nil || len(record.Changes) == 0 {
		return nil
	}
	return m.BatchUpdate(func() error {
		for _, change := range record.Changes {
			if err := applyChangeRecord(m, change); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyChangeRecord(m *Model, record ChangeRecord) error {
	switch record.Kind {
	case store.ChangeKindValue:
		payload, err := decodePayload[valuePayload](record)
		if err != nil {
			return err
		}
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		var value any
		if len(payload.Value) > 0 {
			if value, err = store.UnmarshalValue(payload.Value); err != nil {
				return err
			}
		}
		_, err = m.SetValue(cell, value)
		return err

	case store.ChangeKindGeometry:
		payload, err := decodePayload[geometryPayload](record)
		if err != nil {
			return err
		}
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		_, err = m.SetGeometry(cell, payload.Geometry)
		return err

	case store.ChangeKindStyle:
		payload, err := decodePayload[stylePayload](record)
		if err != nil {
			return err
		}
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		_, err = m.SetStyle(cell, payload.Style)
		return err

	case store.ChangeKindCollapse:
		payload, err := decodePayload[collapsePayload](record)
		if err != nil {
			return err
		}
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		_, err = m.SetCollapsed(cell, payload.Collapsed)
		return err

	case store.ChangeKindVisible:
		payload, err := decodePayload[visiblePayload](record)
		if err != nil {
			return err
		}
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		_, err = m.SetVisible(cell, payload.Visible)
		return err

	case store.ChangeKindTerminal:
		payload, err := decodePayload[terminalPayload](record)
		if err != nil {
			return err
		}
		edge, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		var terminal *Cell
		if payload.Terminal != "" {
			if terminal, err = m.replayCell(payload.Terminal); err != nil {
				return err
			}
		}
		_, err = m.SetTerminal(edge, terminal, payload.Source)
		return err

	case store.ChangeKindMove:
		payload, err := decodePayload[movePayload](record)
		if err != nil {
			return err
		}
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		parent, err := m.replayCell(payload.Parent)
		if err != nil {
			return err
		}
		_, err = m.AddAt(parent, cell, payload.Index)
		return err

	case store.ChangeKindDetach:
		cell, err := m.replayCell(record.Cell)
		if err != nil {
			return err
		}
		_, err = m.Remove(cell)
		return err

	case store.ChangeKindAttach:
		return m.applyAttach(record)

	case store.ChangeKindRoot:
		payload, err := decodePayload[rootPayload](record)
		if err != nil {
			return err
		}
		var pairs []snapPair
		built := buildSnapshotCells(payload.Root, &pairs)
		if _, err := m.SetRoot(built); err != nil {
			return err
		}
		return m.resolveSnapshotTerminals(pairs)

	default:
		return fmt.Errorf("graph: unknown change record kind %q", record.Kind)
	}
}

// applyAttach rebuilds a subtree from its snapshot, inserts it and rewires
// first the wiring captured inside the snapshot, then the severed external
// connections recorded with the original detachment.
func (m *Model) applyAttach(record ChangeRecord) error {
	payload, err := decodePayload[attachPayload](record)
	if err != nil {
		return err
	}
	parent, err := m.replayCell(payload.Parent)
	if err != nil {
		return err
	}
	var pairs []snapPair
	built := buildSnapshotCells(payload.Cell, &pairs)
	if _, err := m.AddAt(parent, built, payload.Index); err != nil {
		return err
	}
	if err := m.resolveSnapshotTerminals(pairs); err != nil {
		return err
	}
	for _, conn := range payload.Connections {
		edge, err := m.replayCell(conn.Edge)
		if err != nil {
			return err
		}
		terminal, err := m.replayCell(conn.Terminal)
		if err != nil {
			return err
		}
		if _, err := m.SetTerminal(edge, terminal, conn.Source); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) replayCell(id string) (*Cell, error) {
	cell := m.CellByID(id)
	if cell == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	return cell, nil
}

func decodePayload[T any](record ChangeRecord) (T, error) {
	var payload T
	if err := json.Unmarshal(record.Data, &payload); err != nil {
		return payload, fmt.Errorf("graph: decoding %s payload: %w", record.Kind, err)
	}
	return payload, nil
}
