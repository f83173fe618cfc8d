// Package feed defines the ledger feed key space written by the ingest job
// and read by the projection job:
//
//	^Stellar("first")                                 first ingested ledger
//	^Stellar("latest")                                last fully ingested ledger
//	^Stellar("ledger",seq,"closed_at"|"hash"|"total_tx_count"|"filtered_tx_count")
//	^Stellar("ledger",seq,"tx",idx,"xdr"|"hash")       idx = 0..n-1 in ledger order
//	^Stellar("tx_hash",hash)                          ledger sequence
//	^Projector("cursor")                              last projected ledger
//	^Projector("ledger",seq,...)                      projection summary
//	^Tracked(account)                                 "1" for hydrated accounts
package feed

import (
	"errors"
	"strconv"

	"github.com/pakana/projector/kvdb"
)

// globals
const (
	GlobalStellar   = "Stellar"
	GlobalProjector = "Projector"
	GlobalTracked   = "Tracked"
)

// feed errors
var (
	ErrLedgerNotFound      = errors.New("ledger not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLedgerExists        = errors.New("ledger already ingested")
)

// Ledger is one ingested ledger with its transactions in ledger order.
type Ledger struct {
	Sequence        uint32         `json:"sequence"`
	Hash            string         `json:"hash,omitempty"`
	ClosedAt        string         `json:"closed_at"`
	TotalTxCount    int            `json:"total_tx_count"`
	FilteredTxCount int            `json:"filtered_tx_count"`
	Transactions    []*Transaction `json:"transactions,omitempty"`
}

// Transaction is one ingested transaction.
type Transaction struct {
	Ledger      uint32 `json:"ledger"`
	Index       int    `json:"index"`
	Hash        string `json:"hash"`
	EnvelopeXDR string `json:"envelope_xdr"`
}

func seqString(seq uint32) string {
	return strconv.FormatUint(uint64(seq), 10)
}

// FirstKey is ^Stellar("first").
func FirstKey() kvdb.Key {
	return kvdb.NewKey(GlobalStellar, "first")
}

// LatestKey is ^Stellar("latest").
func LatestKey() kvdb.Key {
	return kvdb.NewKey(GlobalStellar, "latest")
}

// LedgerKey is ^Stellar("ledger",seq).
func LedgerKey(seq uint32) kvdb.Key {
	return kvdb.NewKey(GlobalStellar, "ledger", seqString(seq))
}

// TransactionKey is ^Stellar("ledger",seq,"tx",idx).
func TransactionKey(seq uint32, idx int) kvdb.Key {
	return LedgerKey(seq).Child("tx", strconv.Itoa(idx))
}

// TxHashKey is ^Stellar("tx_hash",hash).
func TxHashKey(hash string) kvdb.Key {
	return kvdb.NewKey(GlobalStellar, "tx_hash", hash)
}

// CursorKey is ^Projector("cursor").
func CursorKey() kvdb.Key {
	return kvdb.NewKey(GlobalProjector, "cursor")
}

// TrackedKey is ^Tracked(account).
func TrackedKey(account string) kvdb.Key {
	return kvdb.NewKey(GlobalTracked, account)
}

func readSeq(r kvdb.Reader, key kvdb.Key) (uint32, bool, error) {
	v, ok, err := r.Get(key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, false, &kvdb.ValueError{Key: key, Value: v, Err: err}
	}
	return uint32(n), true, nil
}

// FirstLedger returns the lowest ingested ledger.
func FirstLedger(r kvdb.Reader) (uint32, bool, error) {
	return readSeq(r, FirstKey())
}

// LatestLedger returns the last fully ingested ledger.
func LatestLedger(r kvdb.Reader) (uint32, bool, error) {
	return readSeq(r, LatestKey())
}

// WriteLedger stores a ledger with its transactions and the hash index and
// advances the latest pointer. Rewriting an ingested ledger is refused.
func WriteLedger(tx kvdb.Tx, l *Ledger) error {
	key := LedgerKey(l.Sequence)
	exists, err := tx.HasTree(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrLedgerExists
	}

	if err := tx.Set(key.Child("closed_at"), l.ClosedAt); err != nil {
		return err
	}
	if l.Hash != "" {
		if err := tx.Set(key.Child("hash"), l.Hash); err != nil {
			return err
		}
	}
	if err := tx.Set(key.Child("total_tx_count"), strconv.Itoa(l.TotalTxCount)); err != nil {
		return err
	}
	for idx, t := range l.Transactions {
		txKey := TransactionKey(l.Sequence, idx)
		if err := tx.Set(txKey.Child("xdr"), t.EnvelopeXDR); err != nil {
			return err
		}
		if err := tx.Set(txKey.Child("hash"), t.Hash); err != nil {
			return err
		}
		if err := tx.Set(TxHashKey(t.Hash), seqString(l.Sequence)); err != nil {
			return err
		}
	}
	if err := tx.Set(key.Child("filtered_tx_count"), strconv.Itoa(len(l.Transactions))); err != nil {
		return err
	}

	first, ok, err := FirstLedger(tx)
	if err != nil {
		return err
	}
	if !ok || l.Sequence < first {
		if err := tx.Set(FirstKey(), seqString(l.Sequence)); err != nil {
			return err
		}
	}
	latest, _, err := LatestLedger(tx)
	if err != nil {
		return err
	}
	if l.Sequence > latest {
		return tx.Set(LatestKey(), seqString(l.Sequence))
	}
	return nil
}

// ReadLedger reads a ledger header and its transactions.
func ReadLedger(r kvdb.Reader, seq uint32) (*Ledger, error) {
	key := LedgerKey(seq)
	closedAt, ok, err := r.Get(key.Child("closed_at"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLedgerNotFound
	}
	l := &Ledger{Sequence: seq, ClosedAt: closedAt}
	if l.Hash, _, err = r.Get(key.Child("hash")); err != nil {
		return nil, err
	}
	total, err := kvdb.GetInt64(r, key.Child("total_tx_count"))
	if err != nil {
		return nil, err
	}
	filtered, err := kvdb.GetInt64(r, key.Child("filtered_tx_count"))
	if err != nil {
		return nil, err
	}
	l.TotalTxCount, l.FilteredTxCount = int(total), int(filtered)
	if l.Transactions, err = ReadTransactions(r, seq); err != nil {
		return nil, err
	}
	return l, nil
}

// ReadTransactions reads tx(0), tx(1), ... until the first absent index.
func ReadTransactions(r kvdb.Reader, seq uint32) ([]*Transaction, error) {
	var txs []*Transaction
	for idx := 0; ; idx++ {
		t, err := ReadTransaction(r, seq, idx)
		if err == ErrTransactionNotFound {
			return txs, nil
		}
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
}

// ReadTransaction reads the transaction at idx of ledger seq.
func ReadTransaction(r kvdb.Reader, seq uint32, idx int) (*Transaction, error) {
	key := TransactionKey(seq, idx)
	envelope, ok, err := r.Get(key.Child("xdr"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTransactionNotFound
	}
	hash, _, err := r.Get(key.Child("hash"))
	if err != nil {
		return nil, err
	}
	return &Transaction{Ledger: seq, Index: idx, Hash: hash, EnvelopeXDR: envelope}, nil
}

// FindTransaction looks a transaction up by hash.
func FindTransaction(r kvdb.Reader, hash string) (*Transaction, error) {
	seq, ok, err := readSeq(r, TxHashKey(hash))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTransactionNotFound
	}
	txs, err := ReadTransactions(r, seq)
	if err != nil {
		return nil, err
	}
	for _, t := range txs {
		if t.Hash == hash {
			return t, nil
		}
	}
	return nil, ErrTransactionNotFound
}

// Cursor returns the last projected ledger, zero if none.
func Cursor(r kvdb.Reader) (uint32, error) {
	seq, _, err := readSeq(r, CursorKey())
	return seq, err
}

// SetCursor records seq as the last projected ledger.
func SetCursor(tx kvdb.Tx, seq uint32) error {
	return tx.Set(CursorKey(), seqString(seq))
}

// IsTracked reports whether account was hydrated.
func IsTracked(r kvdb.Reader, account string) (bool, error) {
	_, ok, err := r.Get(TrackedKey(account))
	return ok, err
}

// SetTracked marks account as hydrated.
func SetTracked(tx kvdb.Tx, account string) error {
	return tx.Set(TrackedKey(account), "1")
}
