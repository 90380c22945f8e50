package ledger

import (
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and ephemeral deployments;
// everything is lost on Close.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) View(fn func(Txn) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTxn{store: s})
}

func (s *MemStore) Update(fn func(Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := &memTxn{
		store:    s,
		writable: true,
		writes:   make(map[string][]byte),
		deletes:  make(map[string]struct{}),
	}
	if err := fn(txn); err != nil {
		return err
	}
	txn.commit()
	return nil
}

func (s *MemStore) Close() error { return nil }

// memTxn buffers writes so that a failed transaction leaves the base map
// untouched. Reads see the buffered writes first.
type memTxn struct {
	store    *MemStore
	writable bool
	writes   map[string][]byte
	deletes  map[string]struct{}
}

func (t *memTxn) Get(key []byte) ([]byte, error) {
	k := string(key)
	if t.writable {
		if _, gone := t.deletes[k]; gone {
			return nil, ErrKeyNotFound
		}
		if v, ok := t.writes[k]; ok {
			return v, nil
		}
	}
	v, ok := t.store.data[k]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (t *memTxn) Set(key, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	k := string(key)
	delete(t.deletes, k)
	t.writes[k] = append([]byte(nil), value...)
	return nil
}

func (t *memTxn) Delete(key []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	k := string(key)
	delete(t.writes, k)
	t.deletes[k] = struct{}{}
	return nil
}

func (t *memTxn) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	p := string(prefix)
	merged := make(map[string][]byte)
	for k, v := range t.store.data {
		if strings.HasPrefix(k, p) {
			merged[k] = v
		}
	}
	if t.writable {
		for k := range t.deletes {
			delete(merged, k)
		}
		for k, v := range t.writes {
			if strings.HasPrefix(k, p) {
				merged[k] = v
			}
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTxn) commit() {
	for k := range t.deletes {
		delete(t.store.data, k)
	}
	for k, v := range t.writes {
		t.store.data[k] = v
	}
}
