package kv

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. Values are copied on the way in and out.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// InTx stages writes and applies them under one lock if fn succeeds.
func (m *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	tx := newStagedStore(m)
	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range tx.ops {
		if op.del {
			delete(m.data, op.key)
			continue
		}
		m.data[op.key] = op.value
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

type stagedOp struct {
	key   string
	value []byte
	del   bool
}

// stagedStore buffers writes on top of a parent store. Reads see the
// buffered writes first.
type stagedStore struct {
	parent Store
	ops    []stagedOp
}

func newStagedStore(parent Store) *stagedStore {
	return &stagedStore{parent: parent}
}

func (s *stagedStore) Get(ctx context.Context, key string) ([]byte, error) {
	for i := len(s.ops) - 1; i >= 0; i-- {
		if s.ops[i].key != key {
			continue
		}
		if s.ops[i].del {
			return nil, nil
		}
		return clone(s.ops[i].value), nil
	}
	return s.parent.Get(ctx, key)
}

func (s *stagedStore) Set(_ context.Context, key string, value []byte) error {
	s.ops = append(s.ops, stagedOp{key: key, value: clone(value)})
	return nil
}

func (s *stagedStore) Delete(_ context.Context, key string) error {
	s.ops = append(s.ops, stagedOp{key: key, del: true})
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
