// Package kvdb is a hierarchical key-value store in the style of MUMPS
// globals. A node is addressed by a global name followed by string
// subscripts, e.g. ^Account("ab01..", "trustlines", "USD", "cd02..", "limit").
// A node may carry a value and may have children at the same time.
//
// All access goes through transactions: Update runs a read-write transaction
// that either commits as a whole or leaves no trace, View runs a consistent
// read-only snapshot.
package kvdb

import (
	"errors"
	"strconv"
	"strings"
)

// store errors
var (
	ErrReadOnly      = errors.New("kvdb: write in read-only transaction")
	ErrInvalidKey    = errors.New("kvdb: invalid key")
	ErrUnknownEngine = errors.New("kvdb: unknown storage engine")
)

// Key addresses a node: Key[0] is the global name, the rest are subscripts.
type Key []string

// NewKey builds a key from a global name and subscripts.
func NewKey(global string, subs ...string) Key {
	k := make(Key, 0, len(subs)+1)
	k = append(k, global)
	return append(k, subs...)
}

// Child returns a new key extended by subs. The receiver is not modified.
func (k Key) Child(subs ...string) Key {
	c := make(Key, 0, len(k)+len(subs))
	c = append(c, k...)
	return append(c, subs...)
}

// Global returns the global name.
func (k Key) Global() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// String renders the key in global notation.
func (k Key) String() string {
	if len(k) == 0 {
		return "^"
	}
	var sb strings.Builder
	sb.WriteString("^")
	sb.WriteString(k[0])
	if len(k) > 1 {
		sb.WriteString("(")
		for i, sub := range k[1:] {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(strconv.Quote(sub))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (k Key) validate() error {
	if len(k) == 0 {
		return ErrInvalidKey
	}
	for _, sub := range k {
		if sub == "" {
			return ErrInvalidKey
		}
	}
	return nil
}

// Reader is read access to the store.
type Reader interface {
	// Get returns the value at key. ok is false if the node holds no value.
	Get(key Key) (value string, ok bool, err error)
	// Children returns the immediate child subscripts of key in byte order.
	Children(key Key) ([]string, error)
	// HasTree reports whether key holds a value or has any descendant.
	HasTree(key Key) (bool, error)
}

// Tx is a read-write transaction.
type Tx interface {
	Reader
	// Set stores value at key, creating intermediate nodes as needed.
	Set(key Key, value string) error
	// DeleteTree removes key's value and its whole subtree.
	DeleteTree(key Key) error
}

// Store is a transactional hierarchical store.
type Store interface {
	// Update runs f in a read-write transaction. If f returns an error or
	// panics nothing written by f becomes visible.
	Update(f func(tx Tx) error) error
	// View runs f against a consistent snapshot.
	View(f func(r Reader) error) error
	Close() error
}

// GetInt64 reads a decimal integer value. An absent value reads as zero.
func GetInt64(r Reader, key Key) (int64, error) {
	v, ok, err := r.Get(key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &ValueError{Key: key, Value: v, Err: err}
	}
	return n, nil
}

// SetInt64 stores n as decimal text.
func SetInt64(tx Tx, key Key, n int64) error {
	return tx.Set(key, strconv.FormatInt(n, 10))
}

// ValueError is returned when a stored value does not parse.
type ValueError struct {
	Key   Key
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return "kvdb: malformed value " + strconv.Quote(e.Value) + " at " + e.Key.String() + ": " + e.Err.Error()
}

func (e *ValueError) Unwrap() error { return e.Err }
