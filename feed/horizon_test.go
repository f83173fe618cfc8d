package feed

import (
	"testing"
	"time"

	"github.com/pakana/projector/tokens/stellar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHorizon(t *testing.T) {
	header := &stellar.HorizonLedger{
		Sequence:                   42,
		Hash:                       "lh",
		ClosedAt:                   time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)),
		SuccessfulTransactionCount: 2,
		FailedTransactionCount:     1,
	}
	txs := []stellar.HorizonTransaction{
		{Hash: "h1", EnvelopeXdr: "e1", Successful: true},
		{Hash: "h2", EnvelopeXdr: "e2"},
		{Hash: "h3", EnvelopeXdr: "e3", Successful: true},
	}

	l := FromHorizon(header, txs)
	assert.Equal(t, uint32(42), l.Sequence)
	assert.Equal(t, "2024-01-02T02:04:05Z", l.ClosedAt)
	assert.Equal(t, 3, l.TotalTxCount)
	assert.Equal(t, 2, l.FilteredTxCount)
	require.Len(t, l.Transactions, 2)
	assert.Equal(t, "h3", l.Transactions[1].Hash)
	assert.Equal(t, 1, l.Transactions[1].Index)
	assert.Equal(t, uint32(42), l.Transactions[1].Ledger)
	assert.True(t, Complete(l, header))

	short := FromHorizon(header, txs[:2])
	assert.False(t, Complete(short, header))
}
