package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/tokens/stellar"
)

// ErrIncompleteLedger is returned when horizon serves fewer or more
// successful transactions than the ledger header counts.
var ErrIncompleteLedger = errors.New("incomplete ledger transactions")

// Ingester copies ledgers from a LedgerSource into the ^Stellar feed, one
// store transaction per ledger, in sequence order.
type Ingester struct {
	store        kvdb.Store
	source       LedgerSource
	startLedger  uint32
	pollInterval time.Duration
}

// NewIngester creates an ingester. startLedger 0 means begin at the
// source's latest ledger when the feed is empty.
func NewIngester(store kvdb.Store, source LedgerSource, startLedger uint32, pollInterval time.Duration) *Ingester {
	return &Ingester{
		store:        store,
		source:       source,
		startLedger:  startLedger,
		pollInterval: pollInterval,
	}
}

func (i *Ingester) nextLedger(ctx context.Context) (uint32, error) {
	var (
		latest uint32
		ok     bool
	)
	err := i.store.View(func(r kvdb.Reader) (err error) {
		latest, ok, err = feed.LatestLedger(r)
		return err
	})
	if err != nil {
		return 0, err
	}
	if ok {
		return latest + 1, nil
	}
	if i.startLedger != 0 {
		return i.startLedger, nil
	}
	return updateRemoteLatestLedger(ctx, i.source)
}

// IngestNext ingests the ledger after the last ingested one. It returns
// false when the source has no newer ledger yet.
func (i *Ingester) IngestNext(ctx context.Context) (uint32, bool, error) {
	next, err := i.nextLedger(ctx)
	if err != nil {
		return 0, false, err
	}
	if next > GetRemoteLatestLedger() {
		remote, err := updateRemoteLatestLedger(ctx, i.source)
		if err != nil {
			return 0, false, err
		}
		if next > remote {
			return next, false, nil
		}
	}

	ledger, err := i.source.GetLedger(ctx, next)
	if errors.Is(err, stellar.ErrLedgerNotFound) {
		return next, false, nil
	}
	if err != nil {
		return next, false, err
	}
	txs, err := i.source.LedgerTransactions(ctx, next)
	if errors.Is(err, stellar.ErrLedgerNotFound) {
		logWorkerWarn("ingest", "ledger transactions not available yet", "ledger", next)
		return next, false, nil
	}
	if err != nil {
		return next, false, err
	}

	l := feed.FromHorizon(ledger, txs)
	if !feed.Complete(l, ledger) {
		return next, false, fmt.Errorf("%w: ledger %d has %d successful transactions, got %d",
			ErrIncompleteLedger, next, ledger.SuccessfulTransactionCount, len(l.Transactions))
	}

	err = i.store.Update(func(tx kvdb.Tx) error {
		return feed.WriteLedger(tx, l)
	})
	if errors.Is(err, feed.ErrLedgerExists) {
		logWorkerWarn("ingest", "ledger already ingested", "ledger", next)
		return next, true, nil
	}
	if err != nil {
		return next, false, err
	}
	logWorker("ingest", "ingest ledger success", "ledger", next, "closedAt", l.ClosedAt, "total", l.TotalTxCount, "filtered", len(l.Transactions))
	return next, true, nil
}

// Run ingests ledgers until ctx is done.
func (i *Ingester) Run(ctx context.Context) {
	logWorker("ingest", "start ingest job", "startLedger", i.startLedger, "interval", i.pollInterval)
	for {
		seq, ingested, err := i.IngestNext(ctx)
		if err != nil && ctx.Err() == nil {
			logWorkerError("ingest", "ingest ledger failed", err, "ledger", seq)
		}
		if ingested && err == nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if !restInJob(ctx, i.pollInterval) {
			break
		}
	}
	logWorker("ingest", "stop ingest job")
}
