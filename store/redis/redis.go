package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/graphdoc/store"
)

// RedisJournalStore implements store.JournalStore using Redis
type RedisJournalStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "graphdoc:"
	TTL      time.Duration // Expiration for records, default 0 (no expiration)
}

// NewRedisJournalStore creates a new Redis journal store
func NewRedisJournalStore(opts RedisOptions) *RedisJournalStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "graphdoc:"
	}

	return &RedisJournalStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the Redis client
func (s *RedisJournalStore) Close() error {
	return s.client.Close()
}

func (s *RedisJournalStore) recordKey(documentID string, seq uint64) string {
	return fmt.Sprintf("%srecord:%s:%d", s.prefix, documentID, seq)
}

// documentKey is a sorted set of sequence numbers, scored by sequence,
// so listing a journal is a single ZRANGE.
func (s *RedisJournalStore) documentKey(documentID string) string {
	return fmt.Sprintf("%sdocument:%s:records", s.prefix, documentID)
}

// Save stores a journal record and indexes it under its document
func (s *RedisJournalStore) Save(ctx context.Context, record *store.JournalRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil record")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}

	key := s.recordKey(record.DocumentID, record.Seq)
	docKey := s.documentKey(record.DocumentID)
	pipe := s.client.Pipeline()

	pipe.Set(ctx, key, data, s.ttl)
	pipe.ZAdd(ctx, docKey, redis.Z{
		Score:  float64(record.Seq),
		Member: strconv.FormatUint(record.Seq, 10),
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, docKey, s.ttl)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save journal record to redis: %w", err)
	}

	return nil
}

// Load retrieves one record of a document by sequence number
func (s *RedisJournalStore) Load(ctx context.Context, documentID string, seq uint64) (*store.JournalRecord, error) {
	key := s.recordKey(documentID, seq)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s seq %d", store.ErrNotFound, documentID, seq)
		}
		return nil, fmt.Errorf("failed to load journal record from redis: %w", err)
	}

	var record store.JournalRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal record: %w", err)
	}

	return &record, nil
}

// List returns all records for a document in ascending sequence order
func (s *RedisJournalStore) List(ctx context.Context, documentID string) ([]*store.JournalRecord, error) {
	docKey := s.documentKey(documentID)
	members, err := s.client.ZRange(ctx, docKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records for document %s: %w", documentID, err)
	}

	if len(members) == 0 {
		return []*store.JournalRecord{}, nil
	}

	var keys []string
	for _, member := range members {
		seq, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sequence number in index: %w", err)
		}
		keys = append(keys, s.recordKey(documentID, seq))
	}

	// MGet returns nil for keys whose records expired; the index entry
	// may outlive the record when a TTL is set, so skip those.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal records: %w", err)
	}

	var records []*store.JournalRecord
	for _, result := range results {
		if result == nil {
			continue
		}

		strData, ok := result.(string)
		if !ok {
			continue
		}

		var record store.JournalRecord
		if err := json.Unmarshal([]byte(strData), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal record: %w", err)
		}
		records = append(records, &record)
	}

	return records, nil
}

// Delete removes one record of a document
func (s *RedisJournalStore) Delete(ctx context.Context, documentID string, seq uint64) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.recordKey(documentID, seq))
	pipe.ZRem(ctx, s.documentKey(documentID), strconv.FormatUint(seq, 10))

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete journal record: %w", err)
	}

	return nil
}

// Clear removes all records for a document
func (s *RedisJournalStore) Clear(ctx context.Context, documentID string) error {
	docKey := s.documentKey(documentID)
	members, err := s.client.ZRange(ctx, docKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get records for clearing: %w", err)
	}

	if len(members) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()

	for _, member := range members {
		seq, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		pipe.Del(ctx, s.recordKey(documentID, seq))
	}
	pipe.Del(ctx, docKey)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear journal records: %w", err)
	}

	return nil
}
