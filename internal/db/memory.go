package db

import (
	"context"
	"fmt"
	"sync"

	"property-ingest/internal/model"
	"property-ingest/pkg/errors"
)

// MemoryStore is an in-process Store used for dry runs and tests. Records
// are copied on the way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]model.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]model.Record)}
}

func (m *MemoryStore) InsertMany(ctx context.Context, table string, records []model.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkIdentifier(table); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[table] = append(m.tables[table], withIDs(records)...)
	return len(records), nil
}

func (m *MemoryStore) Update(ctx context.Context, table, id string, patch model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.tables[table] {
		if r.ID() != id {
			continue
		}
		for k, v := range patch {
			r[k] = v
		}
		return nil
	}
	return fmt.Errorf("%w: %s/%s", errors.ErrNotFound, table, id)
}

func (m *MemoryStore) FindOne(ctx context.Context, table string, filter model.Filter) (model.Record, error) {
	records, err := m.FindMany(ctx, table, filter, nil)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (m *MemoryStore) FindMany(ctx context.Context, table string, filter model.Filter, projection []string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Record
	for _, r := range m.tables[table] {
		if !filter.Matches(r) {
			continue
		}
		out = append(out, project(r, projection))
	}
	return out, nil
}

// Count returns the number of rows in table.
func (m *MemoryStore) Count(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

func project(r model.Record, projection []string) model.Record {
	out := make(model.Record)
	if len(projection) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	for _, c := range projection {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}
