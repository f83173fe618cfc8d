package kvdb

import (
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

var _ Store = &Badger{}

// Badger is a Store backed by badger. Badger transactions are optimistic:
// a commit that conflicts with a concurrent writer fails with
// badger.ErrConflict and nothing is written.
type Badger struct {
	db *badger.DB
}

// NewBadger opens a badger store with both keys and values under dir.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "kvdb/badger: failed to open db")
	}
	return &Badger{db: db}, nil
}

// Update implements Store.
func (s *Badger) Update(f func(tx Tx) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return f(&badgerTx{txn: txn})
	})
}

// View implements Store.
func (s *Badger) View(f func(r Reader) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return f(&badgerTx{txn: txn})
	})
}

// Close the store, removing any open resources.
func (s *Badger) Close() error {
	return s.db.Close()
}

type badgerTx struct {
	txn *badger.Txn
}

func (tx *badgerTx) Get(key Key) (string, bool, error) {
	if err := key.validate(); err != nil {
		return "", false, err
	}
	item, err := tx.txn.Get(encodeKey(key))
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "kvdb/badger: failed to get key")
	}
	v, err := item.Value()
	if err != nil {
		return "", false, errors.Wrap(err, "kvdb/badger: failed to read value")
	}
	return string(v), true, nil
}

// keys returns copies of all keys under prefix.
func (tx *badgerTx) keys(prefix []byte, limit int) [][]byte {
	opt := badger.DefaultIteratorOptions
	opt.PrefetchValues = false
	iter := tx.txn.NewIterator(opt)
	defer iter.Close()

	var out [][]byte
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		out = append(out, append([]byte(nil), iter.Item().Key()...))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (tx *badgerTx) Children(key Key) ([]string, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	prefix := encodeKey(key)
	c := &childCollector{prefix: prefix}
	for _, k := range tx.keys(prefix, 0) {
		c.add(k)
	}
	return c.children, nil
}

func (tx *badgerTx) HasTree(key Key) (bool, error) {
	if err := key.validate(); err != nil {
		return false, err
	}
	return len(tx.keys(encodeKey(key), 1)) > 0, nil
}

func (tx *badgerTx) Set(key Key, value string) error {
	if err := key.validate(); err != nil {
		return err
	}
	err := tx.txn.Set(encodeKey(key), []byte(value))
	if err == badger.ErrReadOnlyTxn {
		return ErrReadOnly
	}
	return errors.Wrap(err, "kvdb/badger: failed to set key")
}

func (tx *badgerTx) DeleteTree(key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	for _, k := range tx.keys(encodeKey(key), 0) {
		err := tx.txn.Delete(k)
		if err == badger.ErrReadOnlyTxn {
			return ErrReadOnly
		}
		if err != nil {
			return errors.Wrap(err, "kvdb/badger: failed to delete key")
		}
	}
	return nil
}
