// Package worker includes the long running jobs of the projector.
//
// It contains the following jobs (concurrently):
//	updatelatest
//		track the latest closed ledger of horizon.
//	ingest
//		fetch ledgers and their successful transactions from horizon into the ^Stellar feed.
//	project
//		decode, validate and apply every ingested ledger in order, advancing ^Projector("cursor").
//	blocklist
//		reload the account block list when its file changes.
// A store failure in the project job aborts the ledger, sends an alert email
// if configured and retries the same ledger after the retry interval.
package worker
