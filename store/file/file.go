// Package file provides a filesystem-backed journal store. Records are
// written as zstd-compressed JSON, one file per record, grouped into one
// directory per document.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/smallnest/graphdoc/store"
)

// recordExt is the suffix of journal record files.
const recordExt = ".json.zst"

// FileJournalStore implements store.JournalStore on the local filesystem.
// Each document owns a directory under the store root and each record is
// one zstd-compressed JSON file named by its zero-padded sequence number,
// so a journal directory lists in replay order.
type FileJournalStore struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Options configuration for the file store
type Options struct {
	// Dir is the root directory holding one subdirectory per document.
	Dir string
}

// NewFileJournalStore creates a file store rooted at opts.Dir, creating
// the directory if it does not exist.
func NewFileJournalStore(opts Options) (*FileJournalStore, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("file: journal directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("file: creating journal directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("file: creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("file: creating zstd decoder: %w", err)
	}

	return &FileJournalStore{
		dir:     opts.Dir,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close releases the compressor resources.
func (s *FileJournalStore) Close() error {
	s.decoder.Close()
	return s.encoder.Close()
}

// Dir returns the store's root directory.
func (s *FileJournalStore) Dir() string { return s.dir }

func (s *FileJournalStore) documentDir(documentID string) string {
	// Escaping keeps arbitrary document IDs filesystem-safe.
	return filepath.Join(s.dir, url.PathEscape(documentID))
}

func (s *FileJournalStore) recordPath(documentID string, seq uint64) string {
	return filepath.Join(s.documentDir(documentID), fmt.Sprintf("%020d%s", seq, recordExt))
}

// Save writes a record file, overwriting any record with the same
// document ID and sequence number.
func (s *FileJournalStore) Save(_ context.Context, record *store.JournalRecord) error {
	if record == nil {
		return fmt.Errorf("file: cannot save nil record")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("file: marshaling record: %w", err)
	}
	if err := os.MkdirAll(s.documentDir(record.DocumentID), 0o755); err != nil {
		return fmt.Errorf("file: creating document directory: %w", err)
	}
	compressed := s.encoder.EncodeAll(data, nil)
	if err := os.WriteFile(s.recordPath(record.DocumentID, record.Seq), compressed, 0o644); err != nil {
		return fmt.Errorf("file: writing record: %w", err)
	}
	return nil
}

// Load retrieves one record of a document by sequence number.
func (s *FileJournalStore) Load(_ context.Context, documentID string, seq uint64) (*store.JournalRecord, error) {
	data, err := os.ReadFile(s.recordPath(documentID, seq))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s seq %d", store.ErrNotFound, documentID, seq)
		}
		return nil, fmt.Errorf("file: reading record: %w", err)
	}
	return s.decodeRecord(data)
}

// List returns all records for a document in ascending sequence order.
func (s *FileJournalStore) List(_ context.Context, documentID string) ([]*store.JournalRecord, error) {
	dir := s.documentDir(documentID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("file: reading document directory: %w", err)
	}

	var records []*store.JournalRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("file: reading record %s: %w", entry.Name(), err)
		}
		record, err := s.decodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("file: decoding record %s: %w", entry.Name(), err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	return records, nil
}

// Delete removes one record file. Deleting a missing record is a no-op.
func (s *FileJournalStore) Delete(_ context.Context, documentID string, seq uint64) error {
	if err := os.Remove(s.recordPath(documentID, seq)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file: deleting record: %w", err)
	}
	return nil
}

// Clear removes a document's whole journal directory.
func (s *FileJournalStore) Clear(_ context.Context, documentID string) error {
	if err := os.RemoveAll(s.documentDir(documentID)); err != nil {
		return fmt.Errorf("file: clearing document: %w", err)
	}
	return nil
}

func (s *FileJournalStore) decodeRecord(data []byte) (*store.JournalRecord, error) {
	raw, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("file: decompressing record: %w", err)
	}
	var record store.JournalRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("file: unmarshaling record: %w", err)
	}
	return &record, nil
}
