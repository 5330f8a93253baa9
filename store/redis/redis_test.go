package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/smallnest/graphdoc/store"
)

func testRecord(documentID string, seq uint64) *store.JournalRecord {
	return &store.JournalRecord{
		ID:         fmt.Sprintf("%s-%d", documentID, seq),
		DocumentID: documentID,
		Seq:        seq,
		Origin:     store.OriginCommit,
		Changes: []store.ChangeRecord{
			{Kind: store.ChangeKindValue, Cell: "cell-1", Data: []byte(`{"value":"hello"}`)},
		},
		Fingerprint: fmt.Sprintf("fp-%d", seq),
		Timestamp:   time.Now().UTC(),
	}
}

func TestRedisJournalStore(t *testing.T) {
	// Start miniredis
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	// Create store
	js := NewRedisJournalStore(RedisOptions{
		Addr: mr.Addr(),
	})
	defer js.Close()

	ctx := context.Background()

	// Test Save
	record := testRecord("doc-1", 1)
	err = js.Save(ctx, record)
	assert.NoError(t, err)

	// Test Load
	loaded, err := js.Load(ctx, "doc-1", 1)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, record.Seq, loaded.Seq)
	assert.Equal(t, record.Fingerprint, loaded.Fingerprint)
	assert.Len(t, loaded.Changes, 1)
	assert.Equal(t, store.ChangeKindValue, loaded.Changes[0].Kind)

	// Test List
	list, err := js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, record.ID, list[0].ID)

	// Test Delete
	err = js.Delete(ctx, "doc-1", 1)
	assert.NoError(t, err)

	_, err = js.Load(ctx, "doc-1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err = js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 0)

	// Test Clear
	// Add multiple records
	js.Save(ctx, testRecord("doc-1", 2))
	js.Save(ctx, testRecord("doc-1", 3))

	list, err = js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)

	err = js.Clear(ctx, "doc-1")
	assert.NoError(t, err)

	list, err = js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 0)
}

func TestRedisJournalStore_ListOrder(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	js := NewRedisJournalStore(RedisOptions{Addr: mr.Addr()})
	defer js.Close()

	ctx := context.Background()

	// Save out of order; the sorted set index restores sequence order.
	for _, seq := range []uint64{3, 1, 2} {
		err := js.Save(ctx, testRecord("doc-1", seq))
		assert.NoError(t, err)
	}

	list, err := js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 3)
	for i, record := range list {
		assert.Equal(t, uint64(i+1), record.Seq)
	}
}

func TestRedisJournalStore_Overwrite(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	js := NewRedisJournalStore(RedisOptions{Addr: mr.Addr()})
	defer js.Close()

	ctx := context.Background()

	err = js.Save(ctx, testRecord("doc-1", 1))
	assert.NoError(t, err)

	second := testRecord("doc-1", 1)
	second.Fingerprint = "fp-rewritten"
	err = js.Save(ctx, second)
	assert.NoError(t, err)

	loaded, err := js.Load(ctx, "doc-1", 1)
	assert.NoError(t, err)
	assert.Equal(t, "fp-rewritten", loaded.Fingerprint)

	list, err := js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisJournalStore_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	js := NewRedisJournalStore(RedisOptions{
		Addr: mr.Addr(),
		TTL:  time.Minute,
	})
	defer js.Close()

	ctx := context.Background()

	err = js.Save(ctx, testRecord("doc-1", 1))
	assert.NoError(t, err)

	_, err = js.Load(ctx, "doc-1", 1)
	assert.NoError(t, err)

	// Expire everything
	mr.FastForward(2 * time.Minute)

	_, err = js.Load(ctx, "doc-1", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := js.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 0)
}

func TestRedisJournalStore_CustomPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	first := NewRedisJournalStore(RedisOptions{Addr: mr.Addr(), Prefix: "appA:"})
	defer first.Close()
	second := NewRedisJournalStore(RedisOptions{Addr: mr.Addr(), Prefix: "appB:"})
	defer second.Close()

	ctx := context.Background()

	err = first.Save(ctx, testRecord("doc-1", 1))
	assert.NoError(t, err)

	// Prefixes isolate journals sharing one Redis database.
	list, err := second.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 0)

	list, err = first.List(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}
