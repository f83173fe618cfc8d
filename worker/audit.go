package worker

import (
	"github.com/pakana/projector/common"
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/mongodb"
)

// AuditSummary records a projected ledger and its deltas in mongodb.
// Audit failures are logged and never block projection.
func AuditSummary(s *feed.Summary, txs []*ProjectedTx) {
	if !mongodb.HasClient() {
		return
	}
	now := common.Now()
	for _, t := range txs {
		docs := mongodb.NewMgoBalanceDeltas(s.Ledger, t.Index, t.Hash, t.Deltas, now)
		if err := mongodb.AddBalanceDeltas(docs); err != nil {
			logWorkerError("audit", "add balance deltas failed", err, "ledger", s.Ledger, "tx", t.Hash)
		}
	}
	if err := mongodb.AddLedgerSummary(mongodb.NewMgoLedgerSummary(s, now)); err != nil {
		logWorkerError("audit", "add ledger summary failed", err, "ledger", s.Ledger)
	}
}
