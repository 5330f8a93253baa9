// Package redis provides Redis-backed storage for graphdoc journals.
//
// This package implements fast, in-memory journal persistence using Redis,
// a good fit for scenarios requiring low-latency access to change history
// or sharing journals across multiple processes or servers.
//
// # Key Features
//
//   - High-performance record storage with Redis
//   - Support for TTL (time-to-live) automatic expiration
//   - Pipelined writes keep record and index in step
//   - Sorted-set index per document for ordered listing
//   - Configurable key prefixes for multi-tenancy
//   - JSON serialization of journal records
//
// # Basic Usage
//
//	import (
//		"context"
//		"time"
//
//		"github.com/smallnest/graphdoc/graph"
//		"github.com/smallnest/graphdoc/store/redis"
//	)
//
//	// Create a Redis journal store
//	js := redis.NewRedisJournalStore(redis.RedisOptions{
//		Addr:     "localhost:6379",
//		Password: "yourpassword",
//		DB:       0,              // Redis database number
//		Prefix:   "graphdoc:",    // Optional key prefix
//		TTL:      24 * time.Hour, // Optional TTL for records
//	})
//	defer js.Close()
//
//	// Record every committed edit of a document
//	model := graph.NewModel()
//	recorder, err := graph.NewJournalRecorder(context.Background(), model, js, "doc-1")
//	if err != nil {
//		return err
//	}
//	model.AddChangeListener(recorder)
//
// # Configuration
//
// ## Connection Options
//
//	// Single Redis instance
//	js := redis.NewRedisJournalStore(redis.RedisOptions{
//		Addr:     "localhost:6379",
//		Password: "",
//		DB:       0,
//	})
//
//	// With authentication
//	js := redis.NewRedisJournalStore(redis.RedisOptions{
//		Addr:     "redis.example.com:6379",
//		Password: "your-redis-password",
//		DB:       1,
//	})
//
// ## TTL Configuration
//
// A TTL turns the journal into a rolling window: records older than the
// TTL disappear, and List skips index entries whose records expired.
//
//	// Keep one day of history
//	js := redis.NewRedisJournalStore(redis.RedisOptions{
//		Addr: "localhost:6379",
//		TTL:  24 * time.Hour,
//	})
//
// Note that replaying a journal requires its full history from the first
// record, so TTL-based expiry suits audit trails better than documents
// that must be rebuilt from scratch.
//
// # Key Layout
//
// With the default prefix, a document "doc-1" with two records occupies:
//
//	graphdoc:record:doc-1:1           JSON record, seq 1
//	graphdoc:record:doc-1:2           JSON record, seq 2
//	graphdoc:document:doc-1:records   ZSET {1, 2} scored by seq
//
// # Testing
//
// Tests can run against miniredis instead of a live server:
//
//	mr, _ := miniredis.Run()
//	defer mr.Close()
//	js := redis.NewRedisJournalStore(redis.RedisOptions{Addr: mr.Addr()})
package redis
