package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the list in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

func NewMemoryStore(items ...Item) *MemoryStore {
	return &MemoryStore{items: cloneItems(items)}
}

func (m *MemoryStore) Load(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneItems(m.items), nil
}

func (m *MemoryStore) Save(ctx context.Context, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = cloneItems(items)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
