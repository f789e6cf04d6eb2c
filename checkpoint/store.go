// Package checkpoint persists reader progress between runs.
package checkpoint

import (
	"context"
	"sync"

	"github.com/hugolhafner/kreader/kafka"
)

// Store is a key-value store for offset tables. Implementations must not alias
// tables passed to Put or returned from Get.
type Store interface {
	// Get returns the table saved under key, or false when there is none.
	Get(ctx context.Context, key string) (kafka.OffsetTable, bool, error)
	Put(ctx context.Context, key string, table kafka.OffsetTable) error
}

var _ Store = (*ExecutionContext)(nil)

// ExecutionContext is an in-memory Store scoped to one run. Seed it with Put to
// resume from a known position.
type ExecutionContext struct {
	mu     sync.RWMutex
	tables map[string]kafka.OffsetTable
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{tables: make(map[string]kafka.OffsetTable)}
}

func (e *ExecutionContext) Get(_ context.Context, key string) (kafka.OffsetTable, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	table, ok := e.tables[key]
	if !ok {
		return nil, false, nil
	}
	return table.Clone(), true, nil
}

func (e *ExecutionContext) Put(_ context.Context, key string, table kafka.OffsetTable) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tables[key] = table.Clone()
	return nil
}

// Keys returns the keys that hold a table.
func (e *ExecutionContext) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]string, 0, len(e.tables))
	for k := range e.tables {
		keys = append(keys, k)
	}
	return keys
}
