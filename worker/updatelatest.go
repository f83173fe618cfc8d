package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pakana/projector/tokens/stellar"
)

// LedgerSource is where ledgers are ingested from, usually horizon.
type LedgerSource interface {
	LatestLedger(ctx context.Context) (*stellar.HorizonLedger, error)
	GetLedger(ctx context.Context, seq uint32) (*stellar.HorizonLedger, error)
	LedgerTransactions(ctx context.Context, seq uint32) ([]stellar.HorizonTransaction, error)
}

var remoteLatestLedger uint32

// GetRemoteLatestLedger returns the latest ledger seen on the source, 0 if unknown
func GetRemoteLatestLedger() uint32 {
	return atomic.LoadUint32(&remoteLatestLedger)
}

func updateRemoteLatestLedger(ctx context.Context, source LedgerSource) (uint32, error) {
	latest, err := source.LatestLedger(ctx)
	if err != nil {
		return 0, err
	}
	old := atomic.SwapUint32(&remoteLatestLedger, latest.Sequence)
	if old != latest.Sequence {
		logWorkerTrace("updatelatest", "update remote latest ledger", "latest", latest.Sequence)
	}
	return latest.Sequence, nil
}

// StartUpdateLatestLedgerJob update remote latest ledger job
func StartUpdateLatestLedgerJob(ctx context.Context, source LedgerSource, interval time.Duration) {
	logWorker("updatelatest", "start update latest ledger job", "interval", interval)
	for {
		if _, err := updateRemoteLatestLedger(ctx, source); err != nil && ctx.Err() == nil {
			logWorkerError("updatelatest", "get remote latest ledger error", err)
		}
		if !restInJob(ctx, interval) {
			logWorker("updatelatest", "stop update latest ledger job")
			return
		}
	}
}
