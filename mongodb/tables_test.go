package mongodb

import (
	"errors"
	"strings"
	"testing"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewMgoBalanceDeltas(t *testing.T) {
	a := strings.Repeat("aa", 32)
	deltas := []stellar.BalanceDelta{
		{AccountID: a, Delta: -100, Asset: stellar.NativeAsset, Reason: stellar.ReasonTxFee},
		{AccountID: a, Asset: stellar.MergeOutAsset, Reason: stellar.ReasonAccountMerge},
	}
	docs := NewMgoBalanceDeltas(42, 3, "txhash", deltas, 1700000000)
	require.Len(t, docs, 2)
	assert.Equal(t, "42:3:0", docs[0].Key)
	assert.Equal(t, "42:3:1", docs[1].Key)
	assert.Equal(t, int64(-100), docs[0].Delta)
	assert.Equal(t, stellar.KindAmount.String(), docs[0].Kind)
	assert.Equal(t, stellar.KindUnresolved.String(), docs[1].Kind)
	assert.Equal(t, "txhash", docs[1].TxHash)
}

func TestNewMgoLedgerSummary(t *testing.T) {
	s := &feed.Summary{Ledger: 7, ClosedAt: "2024-01-01T00:00:00Z", Total: 3, Applied: 2, Skipped: 1, Mutations: 5}
	doc := NewMgoLedgerSummary(s, 11)
	assert.Equal(t, uint32(7), doc.Key)
	assert.Equal(t, 5, doc.Mutations)
	assert.Equal(t, int64(11), doc.Timestamp)
}

func TestMgoError(t *testing.T) {
	assert.Nil(t, mgoError(nil))
	assert.Equal(t, ErrItemNotFound, mgoError(mongo.ErrNoDocuments))
	assert.Error(t, mgoError(errors.New("boom")))
}

func TestNotConnected(t *testing.T) {
	assert.False(t, HasClient())
	assert.Equal(t, ErrNotConnected, AddLedgerSummary(&MgoLedgerSummary{}))
	_, err := FindAccountDeltas("x", 0, 10)
	assert.Equal(t, ErrNotConnected, err)
	_, err = FindLedgerSummary(7)
	assert.Equal(t, ErrNotConnected, err)
	assert.Equal(t, 1000, getLimit(0))
	assert.Equal(t, 10, getLimit(10))
}
