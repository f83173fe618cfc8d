package feed

import (
	"time"

	"github.com/pakana/projector/tokens/stellar"
)

// FromHorizon builds a ledger from horizon records, keeping only the
// successful transactions in application order.
func FromHorizon(ledger *stellar.HorizonLedger, txs []stellar.HorizonTransaction) *Ledger {
	l := &Ledger{
		Sequence:     ledger.Sequence,
		Hash:         ledger.Hash,
		ClosedAt:     ledger.ClosedAt.UTC().Format(time.RFC3339),
		TotalTxCount: ledger.TotalTransactionCount(),
	}
	for idx := range txs {
		t := &txs[idx]
		if !t.Successful {
			continue
		}
		l.Transactions = append(l.Transactions, &Transaction{
			Ledger:      ledger.Sequence,
			Index:       len(l.Transactions),
			Hash:        t.Hash,
			EnvelopeXDR: t.EnvelopeXdr,
		})
	}
	l.FilteredTxCount = len(l.Transactions)
	return l
}

// Complete reports whether every successful transaction the ledger header
// announces is present.
func Complete(l *Ledger, ledger *stellar.HorizonLedger) bool {
	return len(l.Transactions) == ledger.SuccessfulTransactionCount
}
