package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smallnest/graphdoc/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresJournalStore implements store.JournalStore using PostgreSQL
type PostgresJournalStore struct {
	pool      DBPool
	tableName string
}

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "journal_records"
}

// NewPostgresJournalStore creates a new Postgres journal store
func NewPostgresJournalStore(ctx context.Context, opts PostgresOptions) (*PostgresJournalStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "journal_records"
	}

	return &PostgresJournalStore{
		pool:      pool,
		tableName: tableName,
	}, nil
}

// NewPostgresJournalStoreWithPool creates a new Postgres journal store with an existing pool
// Useful for testing with mocks
func NewPostgresJournalStoreWithPool(pool DBPool, tableName string) *PostgresJournalStore {
	if tableName == "" {
		tableName = "journal_records"
	}
	return &PostgresJournalStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresJournalStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			seq BIGINT NOT NULL,
			origin TEXT NOT NULL,
			changes JSONB NOT NULL,
			fingerprint TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			metadata JSONB,
			UNIQUE (document_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_document_id ON %s (document_id);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresJournalStore) Close() {
	s.pool.Close()
}

// Save stores a journal record, replacing an existing record with the
// same document ID and sequence number
func (s *PostgresJournalStore) Save(ctx context.Context, record *store.JournalRecord) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (document_id, seq) DO UPDATE SET
			id = EXCLUDED.id,
			origin = EXCLUDED.origin,
			changes = EXCLUDED.changes,
			fingerprint = EXCLUDED.fingerprint,
			timestamp = EXCLUDED.timestamp,
			metadata = EXCLUDED.metadata
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		record.ID,
		record.DocumentID,
		record.Seq,
		record.Origin,
		changesJSON,
		record.Fingerprint,
		record.Timestamp,
		metadataJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to save journal record: %w", err)
	}

	return nil
}

// Load retrieves one record of a document by sequence number
func (s *PostgresJournalStore) Load(ctx context.Context, documentID string, seq uint64) (*store.JournalRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, seq, origin, changes, fingerprint, timestamp, metadata
		FROM %s
		WHERE document_id = $1 AND seq = $2
	`, s.tableName)

	var record store.JournalRecord
	var changesJSON []byte
	var metadataJSON []byte

	err := s.pool.QueryRow(ctx, query, documentID, seq).Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s seq %d", store.ErrNotFound, documentID, seq)
		}
		return nil, fmt.Errorf("failed to load journal record: %w", err)
	}

	if err := json.Unmarshal(changesJSON, &record.Changes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &record, nil
}

// List returns all records for a document in ascending sequence order
func (s *PostgresJournalStore) List(ctx context.Context, documentID string) ([]*store.JournalRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, seq, origin, changes, fingerprint, timestamp, metadata
		FROM %s
		WHERE document_id = $1
		ORDER BY seq ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal records: %w", err)
	}
	defer rows.Close()

	var records []*store.JournalRecord
	for rows.Next() {
		var record store.JournalRecord
		var changesJSON []byte
		var metadataJSON []byte

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

		if err := json.Unmarshal(changesJSON, &record.Changes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
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
func (s *PostgresJournalStore) Delete(ctx context.Context, documentID string, seq uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = $1 AND seq = $2", s.tableName)
	_, err := s.pool.Exec(ctx, query, documentID, seq)
	if err != nil {
		return fmt.Errorf("failed to delete journal record: %w", err)
	}
	return nil
}

// Clear removes all records for a document
func (s *PostgresJournalStore) Clear(ctx context.Context, documentID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = $1", s.tableName)
	_, err := s.pool.Exec(ctx, query, documentID)
	if err != nil {
		return fmt.Errorf("failed to clear journal records: %w", err)
	}
	return nil
}
