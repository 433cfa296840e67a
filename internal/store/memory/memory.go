// Package memory is an in-process tabular store. It backs tests and the
// `folio seed` dry run.
package memory

import (
	"context"
	"sync"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/store"
)

// Backend keeps rows per table in insertion order.
type Backend struct {
	mu     sync.RWMutex
	tables map[string][]store.Record
}

// New returns an empty store.
func New() *Backend {
	return &Backend{tables: make(map[string][]store.Record)}
}

// List returns copies of every row in table. Unknown tables are empty.
func (b *Backend) List(_ context.Context, table string) ([]store.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := b.tables[table]
	out := make([]store.Record, len(rows))
	for i, r := range rows {
		out[i] = clone(r)
	}
	return out, nil
}

// Create appends a row with a fresh id.
func (b *Backend) Create(_ context.Context, table string, fields map[string]any) (store.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := clone(store.Record{ID: store.NewRecordID(), Fields: fields})
	b.tables[table] = append(b.tables[table], rec)
	return clone(rec), nil
}

// Update merges fields into row id.
func (b *Backend) Update(_ context.Context, table, id string, fields map[string]any) (store.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, r := range b.tables[table] {
		if r.ID != id {
			continue
		}
		for k, v := range fields {
			r.Fields[k] = v
		}
		b.tables[table][i] = r
		return clone(r), nil
	}
	return store.Record{}, errors.NewNotFound("record", id)
}

// Delete removes row id.
func (b *Backend) Delete(_ context.Context, table, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := b.tables[table]
	for i, r := range rows {
		if r.ID == id {
			b.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFound("record", id)
}

func clone(r store.Record) store.Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return store.Record{ID: r.ID, Fields: fields}
}
