package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/projection"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cursor(t *testing.T, store kvdb.Store) uint32 {
	var c uint32
	require.NoError(t, store.View(func(r kvdb.Reader) (err error) {
		c, err = feed.Cursor(r)
		return err
	}))
	return c
}

func account(t *testing.T, store kvdb.Store, id string) *projection.Account {
	var acct *projection.Account
	require.NoError(t, store.View(func(r kvdb.Reader) (err error) {
		acct, err = projection.LoadAccount(r, id)
		return err
	}))
	return acct
}

func TestProjectLedger(t *testing.T) {
	store := kvdb.NewMemory()
	writeLedger(t, store, 100,
		encode(t, paymentEnvelope(100, 5, 500)),
		"!!not base64!!",
		encode(t, paymentEnvelope(0, 6, 500)),
		encode(t, feeBump(300, paymentEnvelope(100, 7, 500))),
	)

	p := NewProjector(store, stellar.Validator{}, time.Millisecond, time.Millisecond)
	var got []*ProjectedTx
	p.OnSummary(func(s *feed.Summary, txs []*ProjectedTx) {
		got = txs
	})

	summary, err := p.ProjectNext()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, feed.Summary{
		Ledger:    100,
		ClosedAt:  "2024-01-02T03:04:05Z",
		Total:     4,
		Applied:   1,
		Skipped:   3,
		Mutations: 3,
	}, *summary)
	require.Len(t, got, 1)
	assert.Equal(t, "tx100-0", got[0].Hash)
	assert.Len(t, got[0].Deltas, 3)

	a := account(t, store, hexOf(0xaa))
	assert.Equal(t, int64(-600), a.Balance)
	assert.Equal(t, int64(5), a.SeqNum)
	assert.Equal(t, int64(100), a.LastModified)
	assert.Equal(t, int64(500), account(t, store, hexOf(0xbb)).Balance)
	assert.Equal(t, uint32(100), cursor(t, store))

	require.NoError(t, store.View(func(r kvdb.Reader) error {
		stored, err := feed.ReadSummary(r, 100)
		require.NoError(t, err)
		assert.Equal(t, summary, stored)
		return nil
	}))

	summary, err = p.ProjectNext()
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestProjectFeeBumpWhenAllowed(t *testing.T) {
	store := kvdb.NewMemory()
	writeLedger(t, store, 1, encode(t, feeBump(300, paymentEnvelope(100, 7, 500))))

	summary, err := NewProjector(store, stellar.Validator{AllowFeeBump: true}, 0, 0).ProjectNext()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)

	assert.Equal(t, int64(-300), account(t, store, hexOf(0xcc)).Balance)
	a := account(t, store, hexOf(0xaa))
	assert.Equal(t, int64(-500), a.Balance)
	assert.Equal(t, int64(7), a.SeqNum)
}

func TestProjectInOrderFromFirstLedger(t *testing.T) {
	store := kvdb.NewMemory()
	writeLedger(t, store, 50, encode(t, paymentEnvelope(100, 1, 1)))
	writeLedger(t, store, 52, encode(t, paymentEnvelope(100, 2, 1)))

	p := NewProjector(store, stellar.Validator{}, 0, 0)
	var seen []uint32
	p.OnSummary(func(s *feed.Summary, txs []*ProjectedTx) {
		seen = append(seen, s.Ledger)
	})
	for {
		summary, err := p.ProjectNext()
		require.NoError(t, err)
		if summary == nil {
			break
		}
	}
	// 51 was never ingested and is skipped with an empty summary
	assert.Equal(t, []uint32{50, 51, 52}, seen)
	assert.Equal(t, uint32(52), cursor(t, store))
	assert.Equal(t, int64(-202), account(t, store, hexOf(0xaa)).Balance)
	assert.Equal(t, int64(52), account(t, store, hexOf(0xaa)).LastModified)
}

func TestProjectStoreFailureAbortsLedger(t *testing.T) {
	store := kvdb.NewMemory()
	writeLedger(t, store, 9, encode(t, paymentEnvelope(100, 5, 500)))
	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return tx.Set(projection.BalanceKey(hexOf(0xbb)), "garbage")
	}))

	p := NewProjector(store, stellar.Validator{}, 0, 0)
	summary, err := p.ProjectNext()
	assert.Nil(t, summary)
	var serr *projection.StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, projection.OpParse, serr.Op)

	assert.Zero(t, cursor(t, store))
	require.NoError(t, store.View(func(r kvdb.Reader) error {
		has, err := r.HasTree(projection.AccountKey(hexOf(0xaa)))
		assert.False(t, has)
		_, serr := feed.ReadSummary(r, 9)
		assert.Equal(t, feed.ErrLedgerNotFound, serr)
		return err
	}))

	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return tx.Set(projection.BalanceKey(hexOf(0xbb)), "0")
	}))
	summary, err = p.ProjectNext()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, uint32(9), cursor(t, store))
}

func TestProjectorRunAlertsOnce(t *testing.T) {
	store := kvdb.NewMemory()
	writeLedger(t, store, 3, encode(t, paymentEnvelope(100, 5, 500)))
	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return tx.Set(projection.BalanceKey(hexOf(0xaa)), "garbage")
	}))

	alerts := &fakeAlerter{}
	SetAlerter(alerts)
	defer SetAlerter(nil)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewProjector(store, stellar.Validator{}, time.Millisecond, 5*time.Millisecond)
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, alerts.count())

	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return tx.Set(projection.BalanceKey(hexOf(0xaa)), "0")
	}))
	assert.Eventually(t, func() bool {
		var c uint32
		_ = store.View(func(r kvdb.Reader) (err error) {
			c, err = feed.Cursor(r)
			return err
		})
		return c == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("projector did not stop")
	}
	assert.Equal(t, 1, alerts.count())
}
