package feed

import (
	"testing"

	"github.com/pakana/projector/kvdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedger(seq uint32, hashes ...string) *Ledger {
	l := &Ledger{Sequence: seq, Hash: "lh", ClosedAt: "2024-01-02T03:04:05Z", TotalTxCount: len(hashes) + 1}
	for _, h := range hashes {
		l.Transactions = append(l.Transactions, &Transaction{Hash: h, EnvelopeXDR: "xdr-" + h})
	}
	return l
}

func TestWriteReadLedger(t *testing.T) {
	store := kvdb.NewMemory()

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		_, ok, err := LatestLedger(r)
		assert.False(t, ok)
		return err
	}))

	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return WriteLedger(tx, testLedger(10, "h0", "h1"))
	}))
	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return WriteLedger(tx, testLedger(11))
	}))

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		latest, ok, err := LatestLedger(r)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint32(11), latest)

		l, err := ReadLedger(r, 10)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-02T03:04:05Z", l.ClosedAt)
		assert.Equal(t, "lh", l.Hash)
		assert.Equal(t, 3, l.TotalTxCount)
		assert.Equal(t, 2, l.FilteredTxCount)
		require.Len(t, l.Transactions, 2)
		assert.Equal(t, &Transaction{Ledger: 10, Index: 1, Hash: "h1", EnvelopeXDR: "xdr-h1"}, l.Transactions[1])

		empty, err := ReadLedger(r, 11)
		require.NoError(t, err)
		assert.Empty(t, empty.Transactions)

		_, err = ReadLedger(r, 12)
		assert.Equal(t, ErrLedgerNotFound, err)

		tx, err := FindTransaction(r, "h1")
		require.NoError(t, err)
		assert.Equal(t, uint32(10), tx.Ledger)
		assert.Equal(t, 1, tx.Index)

		_, err = FindTransaction(r, "nope")
		assert.Equal(t, ErrTransactionNotFound, err)
		return nil
	}))
}

func TestWriteLedgerTwice(t *testing.T) {
	store := kvdb.NewMemory()
	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return WriteLedger(tx, testLedger(10, "h0"))
	}))
	err := store.Update(func(tx kvdb.Tx) error {
		return WriteLedger(tx, testLedger(10, "other"))
	})
	assert.Equal(t, ErrLedgerExists, err)
}

func TestLatestOnlyAdvances(t *testing.T) {
	store := kvdb.NewMemory()
	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		if err := WriteLedger(tx, testLedger(20)); err != nil {
			return err
		}
		return WriteLedger(tx, testLedger(19))
	}))
	require.NoError(t, store.View(func(r kvdb.Reader) error {
		latest, _, err := LatestLedger(r)
		require.NoError(t, err)
		assert.Equal(t, uint32(20), latest)
		first, ok, err := FirstLedger(r)
		assert.True(t, ok)
		assert.Equal(t, uint32(19), first)
		return err
	}))
}

func TestCursorTrackedSummary(t *testing.T) {
	store := kvdb.NewMemory()
	account := "ab01"
	summary := &Summary{Ledger: 10, Total: 3, Applied: 2, Skipped: 1, Mutations: 5, Unsupported: 1}

	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		seq, err := Cursor(tx)
		require.NoError(t, err)
		assert.Zero(t, seq)
		require.NoError(t, WriteLedger(tx, testLedger(10)))
		require.NoError(t, SetCursor(tx, 10))
		require.NoError(t, SetTracked(tx, account))
		return WriteSummary(tx, summary)
	}))

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		seq, err := Cursor(r)
		require.NoError(t, err)
		assert.Equal(t, uint32(10), seq)

		tracked, err := IsTracked(r, account)
		require.NoError(t, err)
		assert.True(t, tracked)
		tracked, err = IsTracked(r, "other")
		require.NoError(t, err)
		assert.False(t, tracked)

		got, err := ReadSummary(r, 10)
		require.NoError(t, err)
		want := *summary
		want.ClosedAt = "2024-01-02T03:04:05Z"
		assert.Equal(t, &want, got)

		_, err = ReadSummary(r, 11)
		assert.Equal(t, ErrLedgerNotFound, err)
		return nil
	}))
}
