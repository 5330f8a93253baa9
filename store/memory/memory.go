package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smallnest/graphdoc/store"
)

// MemoryJournalStore implements store.JournalStore entirely in process
// memory. Records are copied on save and load, so callers cannot mutate
// stored history through shared slices or maps. Safe for concurrent use.
type MemoryJournalStore struct {
	mu       sync.RWMutex
	journals map[string]map[uint64]*store.JournalRecord
}

// NewMemoryJournalStore creates an empty in-memory journal store.
func NewMemoryJournalStore() *MemoryJournalStore {
	return &MemoryJournalStore{
		journals: make(map[string]map[uint64]*store.JournalRecord),
	}
}

// Save stores a journal record, overwriting any record with the same
// document ID and sequence number.
func (s *MemoryJournalStore) Save(_ context.Context, record *store.JournalRecord) error {
	if record == nil {
		return fmt.Errorf("memory: cannot save nil record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	journal := s.journals[record.DocumentID]
	if journal == nil {
		journal = make(map[uint64]*store.JournalRecord)
		s.journals[record.DocumentID] = journal
	}
	journal[record.Seq] = cloneRecord(record)
	return nil
}

// Load retrieves one record of a document by sequence number.
func (s *MemoryJournalStore) Load(_ context.Context, documentID string, seq uint64) (*store.JournalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.journals[documentID][seq]
	if !ok {
		return nil, fmt.Errorf("%w: %s seq %d", store.ErrNotFound, documentID, seq)
	}
	return cloneRecord(record), nil
}

// List returns all records for a document in ascending sequence order.
func (s *MemoryJournalStore) List(_ context.Context, documentID string) ([]*store.JournalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journal := s.journals[documentID]
	records := make([]*store.JournalRecord, 0, len(journal))
	for _, record := range journal {
		records = append(records, cloneRecord(record))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	return records, nil
}

// Delete removes one record. Deleting a missing record is a no-op.
func (s *MemoryJournalStore) Delete(_ context.Context, documentID string, seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.journals[documentID], seq)
	return nil
}

// Clear removes all records for a document.
func (s *MemoryJournalStore) Clear(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.journals, documentID)
	return nil
}

// cloneRecord copies the record header plus its changes and metadata. The
// raw change payloads are shared; they are treated as immutable.
func cloneRecord(record *store.JournalRecord) *store.JournalRecord {
	clone := *record
	if record.Changes != nil {
		clone.Changes = make([]store.ChangeRecord, len(record.Changes))
		copy(clone.Changes, record.Changes)
	}
	if record.Metadata != nil {
		clone.Metadata = make(map[string]any, len(record.Metadata))
		for k, v := range record.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
