package projection

import (
	"errors"
	"fmt"

	"github.com/pakana/projector/kvdb"
)

// projection errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrOverflow        = errors.New("balance overflows int64")
)

// store operations
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpParse  = "parse"
)

// StoreError is a failed store mutation. It aborts the whole batch.
type StoreError struct {
	Op  string
	Key kvdb.Key
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %v %v: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeError(op string, key kvdb.Key, err error) error {
	if err == nil {
		return nil
	}
	var serr *StoreError
	if errors.As(err, &serr) {
		return err
	}
	return &StoreError{Op: op, Key: key, Err: err}
}
