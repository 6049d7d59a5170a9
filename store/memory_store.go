package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps documents in process memory. It backs local
// development and the test suites; batches apply under one lock so the
// atomicity guarantee matches the Postgres adapter.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
	bus  *watchBus

	reads   atomic.Int64
	failErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]any),
		bus:  newWatchBus(),
	}
}

// FailWith makes every subsequent operation return err; nil restores
// normal behavior. Test hook for transient-failure paths.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	m.failErr = err
	m.mu.Unlock()
}

// ReadCount reports how many Get/QueryWhere calls were served.
func (m *MemoryStore) ReadCount() int64 { return m.reads.Load() }

func (m *MemoryStore) Get(ctx context.Context, path string) (Document, error) {
	m.reads.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return Document{}, m.failErr
	}
	data, ok := m.docs[path]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return Document{Path: path, Data: deepCopy(data)}, nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	m.reads.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var docs []Document
	for path, data := range m.docs {
		if Collection(path) == collection {
			docs = append(docs, Document{Path: path, Data: deepCopy(data)})
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (m *MemoryStore) QueryWhere(ctx context.Context, collection, field string, equals any) ([]Document, error) {
	m.reads.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var docs []Document
	for path, data := range m.docs {
		if Collection(path) != collection {
			continue
		}
		if fmt.Sprint(data[field]) == fmt.Sprint(equals) {
			docs = append(docs, Document{Path: path, Data: deepCopy(data)})
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (m *MemoryStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	m.mu.Lock()
	if m.failErr != nil {
		m.mu.Unlock()
		return m.failErr
	}

	// Validate before touching anything so a failed batch changes nothing.
	for _, op := range ops {
		if op.Kind == OpUpdate {
			if _, ok := m.docs[op.Path]; !ok {
				m.mu.Unlock()
				return fmt.Errorf("%w: %s", ErrNotFound, op.Path)
			}
		}
	}

	paths := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			m.docs[op.Path] = deepCopy(op.Data)
		case OpUpdate:
			for k, v := range op.Data {
				m.docs[op.Path][k] = v
			}
			m.docs[op.Path] = deepCopy(m.docs[op.Path])
		case OpDelete:
			delete(m.docs, op.Path)
		}
		paths = append(paths, op.Path)
	}
	m.mu.Unlock()

	m.bus.notify(paths)
	return nil
}

func (m *MemoryStore) Subscribe(path string) (*Subscription, error) {
	return m.bus.subscribe(path, m.loadSnapshot), nil
}

func (m *MemoryStore) loadSnapshot(path string) Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Path: path}
	if IsCollection(path) {
		for p, data := range m.docs {
			if Collection(p) == path {
				snap.Docs = append(snap.Docs, Document{Path: p, Data: deepCopy(data)})
			}
		}
		sort.Slice(snap.Docs, func(i, j int) bool { return snap.Docs[i].Path < snap.Docs[j].Path })
		snap.Exists = len(snap.Docs) > 0
		return snap
	}

	data, ok := m.docs[path]
	if !ok {
		return snap
	}
	snap.Exists = true
	snap.Docs = []Document{{Path: path, Data: deepCopy(data)}}
	return snap
}

// deepCopy round-trips through JSON so snapshots are immutable and the
// in-memory value space matches what jsonb storage would produce.
func deepCopy(data map[string]any) map[string]any {
	raw, err := json.Marshal(data)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
