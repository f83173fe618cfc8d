package kvdb

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// Bolt maps the hierarchy onto nested buckets: every node is a bucket named
// by its subscript and a node's own value lives under valueKey inside it.
// Deleting a subtree is a single DeleteBucket.
var valueKey = []byte{0x00}

var _ Store = &Bolt{}

// Bolt is a Store backed by a bolt database file.
type Bolt struct {
	path string
	bdb  *bolt.DB
}

// NewBolt opens or creates the bolt database file at path.
func NewBolt(path string) (*Bolt, error) {
	bdb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "kvdb/bolt: failed to open or create database file")
	}
	return &Bolt{path: path, bdb: bdb}, nil
}

// Update implements Store.
func (db *Bolt) Update(f func(tx Tx) error) error {
	return db.bdb.Update(func(btx *bolt.Tx) error {
		return f(&boltTx{btx: btx})
	})
}

// View implements Store.
func (db *Bolt) View(f func(r Reader) error) error {
	return db.bdb.View(func(btx *bolt.Tx) error {
		return f(&boltTx{btx: btx})
	})
}

// Close the database file.
func (db *Bolt) Close() error {
	return errors.Wrap(db.bdb.Close(), "kvdb/bolt: failed to close")
}

type boltTx struct {
	btx *bolt.Tx
}

// bucket walks down to the bucket of key, or nil if any level is missing.
func (tx *boltTx) bucket(key Key) *bolt.Bucket {
	b := tx.btx.Bucket([]byte(key[0]))
	for _, sub := range key[1:] {
		if b == nil {
			return nil
		}
		b = b.Bucket([]byte(sub))
	}
	return b
}

func (tx *boltTx) Get(key Key) (string, bool, error) {
	if err := key.validate(); err != nil {
		return "", false, err
	}
	b := tx.bucket(key)
	if b == nil {
		return "", false, nil
	}
	v := b.Get(valueKey)
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (tx *boltTx) Children(key Key) ([]string, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	b := tx.bucket(key)
	if b == nil {
		return nil, nil
	}
	var children []string
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if v == nil { // nested bucket
			children = append(children, string(k))
		}
	}
	return children, nil
}

func (tx *boltTx) HasTree(key Key) (bool, error) {
	if err := key.validate(); err != nil {
		return false, err
	}
	b := tx.bucket(key)
	if b == nil {
		return false, nil
	}
	k, _ := b.Cursor().First()
	return k != nil, nil
}

func (tx *boltTx) Set(key Key, value string) error {
	if err := key.validate(); err != nil {
		return err
	}
	if !tx.btx.Writable() {
		return ErrReadOnly
	}
	b, err := tx.btx.CreateBucketIfNotExists([]byte(key[0]))
	if err != nil {
		return errors.Wrapf(err, "kvdb/bolt: failed to create bucket %q", key[0])
	}
	for _, sub := range key[1:] {
		b, err = b.CreateBucketIfNotExists([]byte(sub))
		if err != nil {
			return errors.Wrapf(err, "kvdb/bolt: failed to create bucket %q", sub)
		}
	}
	return errors.Wrap(b.Put(valueKey, []byte(value)), "kvdb/bolt: failed to put value")
}

func (tx *boltTx) DeleteTree(key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	if !tx.btx.Writable() {
		return ErrReadOnly
	}
	var err error
	if len(key) == 1 {
		err = tx.btx.DeleteBucket([]byte(key[0]))
	} else {
		parent := tx.bucket(key[:len(key)-1])
		if parent == nil {
			return nil
		}
		err = parent.DeleteBucket([]byte(key[len(key)-1]))
	}
	if err == bolt.ErrBucketNotFound {
		return nil
	}
	return errors.Wrap(err, "kvdb/bolt: failed to delete bucket")
}
