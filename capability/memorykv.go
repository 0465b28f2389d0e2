package capability

import (
	"context"
	"sort"
	"sync"

	"github.com/outlandhq/wasmfn/transfer"
	"github.com/outlandhq/wasmfn/value"
)

// MemoryKV is an in-memory KVStore backed by a map whose keys are sorted
// on each ranged read. It is safe for concurrent use.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]value.Value
}

// NewMemoryKV creates an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]value.Value)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (*value.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, v value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = v
	return nil
}

func (m *MemoryKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

// inRange reports whether key falls within r, per Bound semantics:
// Unbounded always matches, Included is inclusive, Excluded is exclusive.
func inRange(key string, r transfer.StrandRange) bool {
	switch r.Start.Kind {
	case transfer.BoundIncluded:
		if key < r.Start.Value {
			return false
		}
	case transfer.BoundExcluded:
		if key <= r.Start.Value {
			return false
		}
	}
	switch r.End.Kind {
	case transfer.BoundIncluded:
		if key > r.End.Value {
			return false
		}
	case transfer.BoundExcluded:
		if key >= r.End.Value {
			return false
		}
	}
	return true
}

// sortedKeys returns every key in m matching r, in ascending order. Caller
// must hold at least a read lock.
func (m *MemoryKV) sortedKeys(r transfer.StrandRange) []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if inRange(k, r) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryKV) DelRange(ctx context.Context, r transfer.StrandRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.sortedKeys(r) {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryKV) GetBatch(ctx context.Context, keys []string) ([]*value.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*value.Value, len(keys))
	for i, k := range keys {
		if v, ok := m.data[k]; ok {
			vv := v
			out[i] = &vv
		}
	}
	return out, nil
}

func (m *MemoryKV) SetBatch(ctx context.Context, entries []transfer.KV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.data[e.Key] = e.Value
	}
	return nil
}

func (m *MemoryKV) DelBatch(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryKV) Keys(ctx context.Context, r transfer.StrandRange) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedKeys(r), nil
}

func (m *MemoryKV) Values(ctx context.Context, r transfer.StrandRange) ([]value.Value, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := m.sortedKeys(r)
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *MemoryKV) Entries(ctx context.Context, r transfer.StrandRange) ([]transfer.KV, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := m.sortedKeys(r)
	out := make([]transfer.KV, len(keys))
	for i, k := range keys {
		out[i] = transfer.KV{Key: k, Value: m.data[k]}
	}
	return out, nil
}

func (m *MemoryKV) Count(ctx context.Context, r transfer.StrandRange) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.sortedKeys(r))), nil
}
