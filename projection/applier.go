// Package projection applies balance deltas to the ^Account global and
// reads projected account state back.
package projection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/tokens/stellar"
)

// OpCommit is reported when the store fails to commit a batch.
const OpCommit = "commit"

// Applier applies delta batches to a store, one transaction per batch.
//
// Applying is not idempotent: applying the same batch twice counts every
// amount twice. Callers deliver each ledger exactly once, usually by
// committing their cursor in the same transaction through ApplyTx.
type Applier struct {
	store kvdb.Store
}

// NewApplier returns an applier writing to store.
func NewApplier(store kvdb.Store) *Applier {
	return &Applier{store: store}
}

// Apply applies deltas atomically and returns the number of mutations.
// On error nothing is written.
func (a *Applier) Apply(deltas []stellar.BalanceDelta, ledgerSeq uint32) (int, error) {
	if len(deltas) == 0 {
		return 0, nil
	}
	var count int
	err := a.store.Update(func(tx kvdb.Tx) error {
		n, err := ApplyTx(tx, deltas, ledgerSeq)
		count = n
		return err
	})
	if err != nil {
		var serr *StoreError
		if errors.As(err, &serr) {
			return 0, err
		}
		return 0, &StoreError{Op: OpCommit, Key: kvdb.NewKey(GlobalAccount), Err: err}
	}
	return count, nil
}

// ApplyTx applies deltas inside the caller's transaction. The caller must
// discard the transaction if an error is returned.
func ApplyTx(tx kvdb.Tx, deltas []stellar.BalanceDelta, ledgerSeq uint32) (int, error) {
	count := 0
	for i := range deltas {
		d := &deltas[i]
		switch d.Kind() {
		case stellar.KindTrustline:
			if err := applyTrustline(tx, d); err != nil {
				return 0, err
			}
			count++
		case stellar.KindAmount:
			if err := applyAmount(tx, d, ledgerSeq); err != nil {
				return 0, err
			}
			count++
		case stellar.KindUnresolved:
			// markers are never applied
		}
	}
	return count, nil
}

func readInt(r kvdb.Reader, key kvdb.Key) (int64, error) {
	n, err := kvdb.GetInt64(r, key)
	if err != nil {
		var verr *kvdb.ValueError
		if errors.As(err, &verr) {
			return 0, storeError(OpParse, key, err)
		}
		return 0, storeError(OpGet, key, err)
	}
	return n, nil
}

func writeInt(tx kvdb.Tx, key kvdb.Key, n int64) error {
	return storeError(OpSet, key, kvdb.SetInt64(tx, key, n))
}

func applyTrustline(tx kvdb.Tx, d *stellar.BalanceDelta) error {
	asset, err := stellar.ParseAsset(strings.TrimPrefix(d.Asset, stellar.TrustlinePrefix))
	if err != nil {
		return storeError(OpParse, TrustlinesKey(d.AccountID), err)
	}
	key := TrustlineKey(d.AccountID, asset.Code, asset.Issuer)

	if d.Reason == stellar.ReasonRemoveTrustline {
		return storeError(OpDelete, key, tx.DeleteTree(key))
	}

	limit, ok, err := d.TrustlineLimit()
	if err != nil {
		return storeError(OpParse, key.Child(nodeLimit), fmt.Errorf("reason %q: %w", d.Reason, err))
	}
	if !ok {
		return storeError(OpParse, key.Child(nodeLimit), fmt.Errorf("unknown trustline reason %q", d.Reason))
	}
	if err := writeInt(tx, key.Child(nodeLimit), limit); err != nil {
		return err
	}

	balanceKey := key.Child(nodeBalance)
	_, exists, err := tx.Get(balanceKey)
	if err != nil {
		return storeError(OpGet, balanceKey, err)
	}
	if !exists {
		return writeInt(tx, balanceKey, 0)
	}
	return nil
}

func applyAmount(tx kvdb.Tx, d *stellar.BalanceDelta, ledgerSeq uint32) error {
	var key kvdb.Key
	if d.Asset == stellar.NativeAsset {
		key = BalanceKey(d.AccountID)
	} else {
		asset, err := stellar.ParseAsset(d.Asset)
		if err != nil {
			return storeError(OpParse, AccountKey(d.AccountID), err)
		}
		key = TrustlineKey(d.AccountID, asset.Code, asset.Issuer).Child(nodeBalance)
	}

	current, err := readInt(tx, key)
	if err != nil {
		return err
	}
	sum := current + d.Delta
	if (d.Delta > 0 && sum < current) || (d.Delta < 0 && sum > current) {
		return storeError(OpSet, key, fmt.Errorf("%w: %d %+d", ErrOverflow, current, d.Delta))
	}
	if err := writeInt(tx, key, sum); err != nil {
		return err
	}
	return stampModified(tx, d.AccountID, ledgerSeq)
}

// stampModified advances last_modified, never moving it back.
func stampModified(tx kvdb.Tx, id string, ledgerSeq uint32) error {
	key := LastModifiedKey(id)
	current, err := readInt(tx, key)
	if err != nil {
		return err
	}
	if int64(ledgerSeq) <= current {
		return nil
	}
	return writeInt(tx, key, int64(ledgerSeq))
}

// SetSequence records the last transaction sequence number seen for id.
func SetSequence(tx kvdb.Tx, id string, seq int64) error {
	return writeInt(tx, SeqNumKey(id), seq)
}
