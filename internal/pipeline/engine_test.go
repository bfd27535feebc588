package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"property-ingest/internal/db"
	"property-ingest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the n-th InsertMany call (1-based) and delegates
// everything else to an in-memory store.
type flakyStore struct {
	*db.MemoryStore
	mu         sync.Mutex
	calls      int
	failOnCall int
}

func (s *flakyStore) InsertMany(ctx context.Context, table string, records []model.Record) (int, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if call == s.failOnCall {
		return 0, fmt.Errorf("duplicate key in chunk")
	}
	return s.MemoryStore.InsertMany(ctx, table, records)
}

// blockingStore never finishes an insert before its context is done.
type blockingStore struct {
	*db.MemoryStore
}

func (s *blockingStore) InsertMany(ctx context.Context, table string, records []model.Record) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

// shortStore writes every record but reports one fewer than it was given.
type shortStore struct {
	*db.MemoryStore
}

func (s *shortStore) InsertMany(ctx context.Context, table string, records []model.Record) (int, error) {
	n, err := s.MemoryStore.InsertMany(ctx, table, records)
	return n - 1, err
}

func entities(n int) []model.IngestEntity {
	out := make([]model.IngestEntity, n)
	for i := range out {
		out[i] = model.IngestEntity{SNo: i + 1, Slug: fmt.Sprintf("listing-%d", i+1), Title: "t"}
	}
	return out
}

func TestEngine_ChunkFailureIsIsolated(t *testing.T) {
	store := &flakyStore{MemoryStore: db.NewMemoryStore(), failOnCall: 2}
	engine := NewEngine(store, time.Second)

	result := engine.Persist(context.Background(), entities(45), 20)

	assert.Equal(t, 45, result.Total)
	assert.Equal(t, 25, result.Inserted)
	assert.Equal(t, 20, result.Errored)
	assert.Equal(t, 3, result.Batches)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Error, "duplicate key")

	require.Len(t, result.Rows, 45)
	for i, row := range result.Rows {
		assert.Equal(t, i+1, row.SNo)
		switch {
		case i < 20:
			assert.Equal(t, model.RowInserted, row.Status, "row %d", i)
			assert.Equal(t, 0, row.Chunk)
		case i < 40:
			assert.Equal(t, model.RowErrored, row.Status, "row %d", i)
			assert.Equal(t, 1, row.Chunk)
		default:
			assert.Equal(t, model.RowInserted, row.Status, "row %d", i)
			assert.Equal(t, 2, row.Chunk)
		}
	}

	assert.Equal(t, 25, store.Count(model.TableProperties))
}

func TestEngine_DefaultBatchSize(t *testing.T) {
	store := db.NewMemoryStore()
	result := NewEngine(store, 0).Persist(context.Background(), entities(41), 0)

	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 41, result.Inserted)
	assert.Empty(t, result.Errors)
}

func TestEngine_TimedOutChunkIsRecorded(t *testing.T) {
	store := &blockingStore{MemoryStore: db.NewMemoryStore()}
	result := NewEngine(store, 10*time.Millisecond).Persist(context.Background(), entities(3), 2)

	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 3, result.Errored)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 0, result.Errors[0].Index)
	assert.Equal(t, 1, result.Errors[1].Index)
	assert.Contains(t, result.Errors[0].Error, "deadline exceeded")
}

func TestEngine_Empty(t *testing.T) {
	result := NewEngine(db.NewMemoryStore(), time.Second).Persist(context.Background(), nil, 20)
	assert.Zero(t, result.Total)
	assert.Zero(t, result.Batches)
	assert.Empty(t, result.Rows)
}

func TestEngine_ShortInsertCountIsFlagged(t *testing.T) {
	store := &shortStore{MemoryStore: db.NewMemoryStore()}
	result := NewEngine(store, time.Second).Persist(context.Background(), entities(3), 2)

	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, 0, result.Warnings[0].Index)
	assert.Equal(t, "store reported 1 of 2 rows inserted", result.Warnings[0].Error)
	assert.Equal(t, 1, result.Warnings[1].Index)

	require.Len(t, result.Rows, 3)
	for _, row := range result.Rows {
		assert.Equal(t, model.RowInserted, row.Status)
		assert.NotEmpty(t, row.Note)
	}

	data, err := json.Marshal(result.Rows[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chunk":0`)
}
