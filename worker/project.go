package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/projection"
	"github.com/pakana/projector/tokens/stellar"
)

// ProjectedTx is one applied transaction of a projected ledger.
type ProjectedTx struct {
	Index  int
	Hash   string
	Deltas []stellar.BalanceDelta
}

// SummaryHandler is called after a ledger projection is committed.
type SummaryHandler func(s *feed.Summary, txs []*ProjectedTx)

// Projector projects ingested ledgers into account state in ledger order.
// Each ledger's deltas, sequence numbers, summary and the cursor advance
// commit in one store transaction, so every ledger is applied exactly once.
type Projector struct {
	store         kvdb.Store
	validator     stellar.Validator
	pollInterval  time.Duration
	retryInterval time.Duration

	handlersLock sync.RWMutex
	handlers     []SummaryHandler

	failing bool
}

// NewProjector creates a projector
func NewProjector(store kvdb.Store, validator stellar.Validator, pollInterval, retryInterval time.Duration) *Projector {
	return &Projector{
		store:         store,
		validator:     validator,
		pollInterval:  pollInterval,
		retryInterval: retryInterval,
	}
}

// OnSummary registers a handler of committed summaries
func (p *Projector) OnSummary(h SummaryHandler) {
	p.handlersLock.Lock()
	p.handlers = append(p.handlers, h)
	p.handlersLock.Unlock()
}

func (p *Projector) publish(s *feed.Summary, txs []*ProjectedTx) {
	p.handlersLock.RLock()
	defer p.handlersLock.RUnlock()
	for _, h := range p.handlers {
		h(s, txs)
	}
}

// nextLedger returns the first unprojected ingested ledger
func nextLedger(r kvdb.Reader) (uint32, bool, error) {
	latest, ok, err := feed.LatestLedger(r)
	if err != nil || !ok {
		return 0, false, err
	}
	first, _, err := feed.FirstLedger(r)
	if err != nil {
		return 0, false, err
	}
	cursor, err := feed.Cursor(r)
	if err != nil {
		return 0, false, err
	}
	next := cursor + 1
	if next < first {
		next = first
	}
	return next, next <= latest, nil
}

// ProjectNext projects the next unprojected ledger. It returns a nil
// summary when every ingested ledger is projected.
func (p *Projector) ProjectNext() (*feed.Summary, error) {
	var (
		summary *feed.Summary
		txs     []*ProjectedTx
		seq     uint32
	)
	err := p.store.Update(func(tx kvdb.Tx) error {
		next, ok, err := nextLedger(tx)
		if err != nil || !ok {
			return err
		}
		seq = next
		ledger, err := feed.ReadLedger(tx, seq)
		if errors.Is(err, feed.ErrLedgerNotFound) {
			logWorkerWarn("project", "ledger missing in feed, skip it", "ledger", seq)
			ledger = &feed.Ledger{Sequence: seq}
		} else if err != nil {
			return err
		}
		summary, txs, err = ProjectLedger(tx, ledger, p.validator)
		if err != nil {
			return err
		}
		if err = feed.WriteSummary(tx, summary); err != nil {
			return err
		}
		return feed.SetCursor(tx, seq)
	})
	if err != nil {
		return nil, fmt.Errorf("project ledger %d: %w", seq, err)
	}
	if summary != nil {
		logWorker("project", "project ledger success", "ledger", summary.Ledger,
			"total", summary.Total, "applied", summary.Applied, "skipped", summary.Skipped,
			"mutations", summary.Mutations, "unsupported", summary.Unsupported)
		p.publish(summary, txs)
	}
	return summary, nil
}

// ProjectLedger decodes, validates and applies every transaction of l
// inside tx. Undecodable or invalid transactions are skipped; a store
// failure aborts the ledger.
func ProjectLedger(tx kvdb.Tx, l *feed.Ledger, validator stellar.Validator) (*feed.Summary, []*ProjectedTx, error) {
	summary := &feed.Summary{Ledger: l.Sequence, ClosedAt: l.ClosedAt}
	var projected []*ProjectedTx
	for _, t := range l.Transactions {
		summary.Total++
		env, err := stellar.DecodeEnvelope(t.EnvelopeXDR)
		if err != nil {
			logWorkerError("project", "decode envelope failed", err, "ledger", l.Sequence, "tx", t.Hash)
			summary.Skipped++
			continue
		}
		if err = validator.Validate(env); err != nil {
			logWorkerWarn("project", "invalid transaction skipped", "ledger", l.Sequence, "tx", t.Hash, "err", err)
			summary.Skipped++
			continue
		}
		if err = projection.SetSequence(tx, stellar.SourceAccount(env), stellar.SequenceNumber(env)); err != nil {
			return nil, nil, err
		}
		deltas := stellar.CalculateDeltas(env)
		mutations, err := projection.ApplyTx(tx, deltas, l.Sequence)
		if err != nil {
			return nil, nil, err
		}
		if unsupported := stellar.UnsupportedOperations(env); len(unsupported) > 0 {
			logWorkerTrace("project", "operations without balance effects", "ledger", l.Sequence, "tx", t.Hash, "ops", unsupported)
			summary.Unsupported += len(unsupported)
		}
		summary.Applied++
		summary.Mutations += mutations
		projected = append(projected, &ProjectedTx{Index: t.Index, Hash: t.Hash, Deltas: deltas})
	}
	return summary, projected, nil
}

// Run projects ledgers until ctx is done. Failed ledgers are retried after
// the retry interval, an alert is sent when a failure streak starts.
func (p *Projector) Run(ctx context.Context) {
	logWorker("project", "start projection job", "poll", p.pollInterval, "retry", p.retryInterval)
	for ctx.Err() == nil {
		summary, err := p.ProjectNext()
		if err != nil {
			logWorkerError("project", "project ledger failed", err)
			if !p.failing {
				p.failing = true
				sendAlert("project", "projection failed", err.Error())
			}
			if !restInJob(ctx, p.retryInterval) {
				break
			}
			continue
		}
		if p.failing {
			p.failing = false
			logWorker("project", "projection recovered")
		}
		if summary == nil && !restInJob(ctx, p.pollInterval) {
			break
		}
	}
	logWorker("project", "stop projection job")
}
