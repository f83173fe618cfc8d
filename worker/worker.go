package worker

import (
	"context"
	"time"

	"github.com/pakana/projector/cmd/utils"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/params"
	"github.com/pakana/projector/tokens/stellar"
)

const interval = 10 * time.Millisecond

// StartWork start the ingest and projection jobs. handlers receive every
// committed projection summary.
func StartWork(ctx context.Context, store kvdb.Store, handlers ...SummaryHandler) *Projector {
	logWorker("worker", "start projector worker")
	config := params.GetConfig()

	if feedCfg := config.Feed; feedCfg != nil && feedCfg.Enable {
		source := stellar.NewHorizonClient(
			feedCfg.HorizonURLs,
			time.Duration(feedCfg.RequestTimeout)*time.Second,
			feedCfg.RetryCount,
		)
		pollInterval := time.Duration(feedCfg.PollInterval) * time.Second
		ingester := NewIngester(store, source, feedCfg.StartLedger, pollInterval)

		startJob(ctx, func(ctx context.Context) {
			StartUpdateLatestLedgerJob(ctx, source, pollInterval)
		})
		time.Sleep(interval)

		startJob(ctx, ingester.Run)
		time.Sleep(interval)
	}

	projCfg := config.Projector
	projector := NewProjector(
		store,
		stellar.Validator{AllowFeeBump: projCfg.AllowFeeBump},
		time.Duration(projCfg.PollInterval)*time.Millisecond,
		time.Duration(projCfg.RetryInterval)*time.Second,
	)
	for _, h := range handlers {
		projector.OnSummary(h)
	}
	projector.OnSummary(AuditSummary)
	startJob(ctx, projector.Run)
	return projector
}

func startJob(ctx context.Context, job func(context.Context)) {
	utils.TopWaitGroup.Add(1)
	go func() {
		defer utils.TopWaitGroup.Done()
		job(ctx)
	}()
}
