package kvdb

import (
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"
)

var _ Store = &Memory{}

// Memory is an in-memory Store built on an immutable radix tree. A writer
// works on its own copy-on-write transaction and publishes the new root on
// commit; readers keep the root they started with.
type Memory struct {
	mu   sync.Mutex // serializes writers
	lock sync.RWMutex
	tree *iradix.Tree
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tree: iradix.New()}
}

func (m *Memory) root() *iradix.Tree {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.tree
}

// Update implements Store.
func (m *Memory) Update(f func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn := m.root().Txn()
	if err := f(&radixTx{txn: txn, writable: true}); err != nil {
		return err
	}
	tree := txn.Commit()

	m.lock.Lock()
	m.tree = tree
	m.lock.Unlock()
	return nil
}

// View implements Store.
func (m *Memory) View(f func(r Reader) error) error {
	return f(&radixTx{txn: m.root().Txn()})
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

type radixTx struct {
	txn      *iradix.Txn
	writable bool
}

func (tx *radixTx) Get(key Key) (string, bool, error) {
	if err := key.validate(); err != nil {
		return "", false, err
	}
	v, ok := tx.txn.Get(encodeKey(key))
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (tx *radixTx) Children(key Key) ([]string, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	prefix := encodeKey(key)
	c := &childCollector{prefix: prefix}
	tx.txn.Root().WalkPrefix(prefix, func(k []byte, _ interface{}) bool {
		c.add(k)
		return false
	})
	return c.children, nil
}

func (tx *radixTx) HasTree(key Key) (bool, error) {
	if err := key.validate(); err != nil {
		return false, err
	}
	found := false
	tx.txn.Root().WalkPrefix(encodeKey(key), func(_ []byte, _ interface{}) bool {
		found = true
		return true
	})
	return found, nil
}

func (tx *radixTx) Set(key Key, value string) error {
	if err := key.validate(); err != nil {
		return err
	}
	if !tx.writable {
		return ErrReadOnly
	}
	tx.txn.Insert(encodeKey(key), value)
	return nil
}

func (tx *radixTx) DeleteTree(key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	if !tx.writable {
		return ErrReadOnly
	}
	var doomed [][]byte
	tx.txn.Root().WalkPrefix(encodeKey(key), func(k []byte, _ interface{}) bool {
		doomed = append(doomed, k)
		return false
	})
	for _, k := range doomed {
		tx.txn.Delete(k)
	}
	return nil
}
