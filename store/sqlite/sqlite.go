package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/smallnest/graphdoc/store"
)

// SqliteJournalStore implements store.JournalStore using SQLite
type SqliteJournalStore struct {
	db        *sql.DB
	tableName string
}

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "journal_records"
}

// NewSqliteJournalStore creates a new SQLite journal store
func NewSqliteJournalStore(opts SqliteOptions) (*SqliteJournalStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "journal_records"
	}

	js := &SqliteJournalStore{
		db:        db,
		tableName: tableName,
	}

	if err := js.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return js, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteJournalStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			origin TEXT NOT NULL,
			changes TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			metadata TEXT,
			UNIQUE (document_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_document_id ON %s (document_id);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteJournalStore) Close() error {
	return s.db.Close()
}

// Save stores a journal record, replacing an existing record with the
// same document ID and sequence number
func (s *SqliteJournalStore) Save(ctx context.Context, record *store.JournalRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil record")
	}

	changesJSON, err := json.Marshal(record.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, seq, origin, changes, fingerprint, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, seq) DO UPDATE SET
			id = excluded.id,
			origin = excluded.origin,
			changes = excluded.changes,
			fingerprint = excluded.fingerprint,
			timestamp = excluded.timestamp,
			metadata = excluded.metadata
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.DocumentID,
		record.Seq,
		record.Origin,
		string(changesJSON),
		record.Fingerprint,
		record.Timestamp,
		string(metadataJSON),
	)

	if err != nil {
		return fmt.Errorf("failed to save journal record: %w", err)
	}

	return nil
}

// Load retrieves one record of a document by sequence number
func (s *SqliteJournalStore) Load(ctx context.Context, documentID string, seq uint64) (*store.JournalRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, seq, origin, changes, fingerprint, timestamp, metadata
		FROM %s
		WHERE document_id = ? AND seq = ?
	`, s.tableName)

	var record store.JournalRecord
	var changesJSON string
	var metadataJSON string

	err := s.db.QueryRowContext(ctx, query, documentID, seq).Scan(
		&record.ID,
		&record.DocumentID,
		&record.Seq,
		&record.Origin,
		&changesJSON,
		&record.Fingerprint,
		&record.Timestamp,
		&metadataJSON,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s seq %d", store.ErrNotFound, documentID, seq)
		}
		return nil, fmt.Errorf("failed to load journal record: %w", err)
	}

	if err := json.Unmarshal([]byte(changesJSON), &record.Changes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &record, nil
}

// List returns all records for a document in ascending sequence order
func (s *SqliteJournalStore) List(ctx context.Context, documentID string) ([]*store.JournalRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, seq, origin, changes, fingerprint, timestamp, metadata
		FROM %s
		WHERE document_id = ?
		ORDER BY seq ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal records: %w", err)
	}
	defer rows.Close()

	var records []*store.JournalRecord
	for rows.Next() {
		var record store.JournalRecord
		var changesJSON string
		var metadataJSON string

		err := rows.Scan(
			&record.ID,
			&record.DocumentID,
			&record.Seq,
			&record.Origin,
			&changesJSON,
			&record.Fingerprint,
			&record.Timestamp,
			&metadataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}

		if err := json.Unmarshal([]byte(changesJSON), &record.Changes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	return records, nil
}

// Delete removes one record of a document
func (s *SqliteJournalStore) Delete(ctx context.Context, documentID string, seq uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = ? AND seq = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, documentID, seq)
	if err != nil {
		return fmt.Errorf("failed to delete journal record: %w", err)
	}
	return nil
}

// Clear removes all records for a document
func (s *SqliteJournalStore) Clear(ctx context.Context, documentID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, documentID)
	if err != nil {
		return fmt.Errorf("failed to clear journal records: %w", err)
	}
	return nil
}
