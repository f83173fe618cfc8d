package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRemoteLatest() {
	atomic.StoreUint32(&remoteLatestLedger, 0)
}

func TestIngestFromStartLedger(t *testing.T) {
	resetRemoteLatest()
	store := kvdb.NewMemory()
	source := newFakeSource()
	source.add(10,
		stellar.HorizonTransaction{Hash: "a", EnvelopeXdr: "AAAA", Successful: true},
		stellar.HorizonTransaction{Hash: "failed", EnvelopeXdr: "BBBB"},
		stellar.HorizonTransaction{Hash: "b", EnvelopeXdr: "CCCC", Successful: true},
	)
	source.add(11)

	ingester := NewIngester(store, source, 10, 0)
	ctx := context.Background()

	seq, ok, err := ingester.IngestNext(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(10), seq)
	assert.Equal(t, uint32(11), GetRemoteLatestLedger())

	seq, ok, err = ingester.IngestNext(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(11), seq)

	_, ok, err = ingester.IngestNext(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		l, err := feed.ReadLedger(r, 10)
		require.NoError(t, err)
		assert.Equal(t, "hash10", l.Hash)
		assert.Equal(t, "2024-01-02T03:04:05Z", l.ClosedAt)
		assert.Equal(t, 2, l.FilteredTxCount)
		require.Len(t, l.Transactions, 2)
		assert.Equal(t, "b", l.Transactions[1].Hash)
		assert.Equal(t, 1, l.Transactions[1].Index)

		found, err := feed.FindTransaction(r, "b")
		require.NoError(t, err)
		assert.Equal(t, "CCCC", found.EnvelopeXDR)

		latest, _, err := feed.LatestLedger(r)
		assert.Equal(t, uint32(11), latest)
		return err
	}))
}

func TestIngestFromRemoteLatest(t *testing.T) {
	resetRemoteLatest()
	store := kvdb.NewMemory()
	source := newFakeSource()
	source.add(7)
	source.add(8)

	seq, ok, err := NewIngester(store, source, 0, 0).IngestNext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(8), seq)
}

func TestIngestWaitsForMissingLedger(t *testing.T) {
	resetRemoteLatest()
	store := kvdb.NewMemory()
	source := newFakeSource()
	source.add(5)
	source.latest = 6

	ingester := NewIngester(store, source, 6, 0)
	_, ok, err := ingester.IngestNext(context.Background())
	// the latest ledger record itself is unknown
	assert.Error(t, err)
	assert.False(t, ok)

	source.add(6)
	seq, ok, err := ingester.IngestNext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(6), seq)
}

func TestIngestThenProject(t *testing.T) {
	resetRemoteLatest()
	store := kvdb.NewMemory()
	source := newFakeSource()
	source.add(20, stellar.HorizonTransaction{Hash: "p", EnvelopeXdr: encode(t, paymentEnvelope(100, 3, 500)), Successful: true})

	_, ok, err := NewIngester(store, source, 20, 0).IngestNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	summary, err := NewProjector(store, stellar.Validator{}, 0, 0).ProjectNext()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Mutations)
	assert.Equal(t, int64(500), account(t, store, hexOf(0xbb)).Balance)
}

func TestIngestRetriesLaggingTransactions(t *testing.T) {
	resetRemoteLatest()
	store := kvdb.NewMemory()
	source := newFakeSource()
	source.add(10,
		stellar.HorizonTransaction{Hash: "a", EnvelopeXdr: "AAAA", Successful: true},
		stellar.HorizonTransaction{Hash: "b", EnvelopeXdr: "BBBB", Successful: true},
	)
	source.setLagging(10, true)

	ingester := NewIngester(store, source, 10, 0)
	seq, ok, err := ingester.IngestNext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint32(10), seq)

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		_, found, err := feed.LatestLedger(r)
		assert.False(t, found)
		return err
	}))

	source.setLagging(10, false)
	seq, ok, err = ingester.IngestNext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(10), seq)

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		l, err := feed.ReadLedger(r, 10)
		require.NoError(t, err)
		assert.Len(t, l.Transactions, 2)
		return nil
	}))
}

func TestIngestRefusesIncompleteLedger(t *testing.T) {
	resetRemoteLatest()
	store := kvdb.NewMemory()
	source := newFakeSource()
	source.add(10, stellar.HorizonTransaction{Hash: "a", EnvelopeXdr: "AAAA", Successful: true})
	source.ledgers[10].SuccessfulTransactionCount = 2

	_, ok, err := NewIngester(store, source, 10, 0).IngestNext(context.Background())
	assert.True(t, errors.Is(err, ErrIncompleteLedger))
	assert.False(t, ok)

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		_, err := feed.ReadLedger(r, 10)
		assert.Equal(t, feed.ErrLedgerNotFound, err)
		return nil
	}))
}
