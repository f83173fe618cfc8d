package mongodb

import (
	"fmt"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/tokens/stellar"
)

// MgoLedgerSummary key is the ledger sequence
type MgoLedgerSummary struct {
	Key         uint32 `bson:"_id"`
	ClosedAt    string `bson:"closedat"`
	Total       int    `bson:"total"`
	Applied     int    `bson:"applied"`
	Skipped     int    `bson:"skipped"`
	Mutations   int    `bson:"mutations"`
	Unsupported int    `bson:"unsupported"`
	Timestamp   int64  `bson:"timestamp"`
}

// MgoBalanceDelta key is ledger:txindex:deltaindex
type MgoBalanceDelta struct {
	Key       string `bson:"_id"`
	Ledger    uint32 `bson:"ledger"`
	TxIndex   int    `bson:"txindex"`
	TxHash    string `bson:"txhash"`
	Account   string `bson:"account"`
	Asset     string `bson:"asset"`
	Delta     int64  `bson:"delta"`
	Reason    string `bson:"reason"`
	Kind      string `bson:"kind"`
	Timestamp int64  `bson:"timestamp"`
}

// NewMgoLedgerSummary converts a projection summary
func NewMgoLedgerSummary(s *feed.Summary, timestamp int64) *MgoLedgerSummary {
	return &MgoLedgerSummary{
		Key:         s.Ledger,
		ClosedAt:    s.ClosedAt,
		Total:       s.Total,
		Applied:     s.Applied,
		Skipped:     s.Skipped,
		Mutations:   s.Mutations,
		Unsupported: s.Unsupported,
		Timestamp:   timestamp,
	}
}

// NewMgoBalanceDeltas converts the deltas of one applied transaction
func NewMgoBalanceDeltas(ledger uint32, txIndex int, txHash string, deltas []stellar.BalanceDelta, timestamp int64) []*MgoBalanceDelta {
	result := make([]*MgoBalanceDelta, len(deltas))
	for i := range deltas {
		d := &deltas[i]
		result[i] = &MgoBalanceDelta{
			Key:       fmt.Sprintf("%d:%d:%d", ledger, txIndex, i),
			Ledger:    ledger,
			TxIndex:   txIndex,
			TxHash:    txHash,
			Account:   d.AccountID,
			Asset:     d.Asset,
			Delta:     d.Delta,
			Reason:    d.Reason,
			Kind:      d.Kind().String(),
			Timestamp: timestamp,
		}
	}
	return result
}
