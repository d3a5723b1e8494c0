// Package jobs provides scheduled background tasks for the order service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. ChallengeExpiryJob - clears delivery challenges past their expiry
// 2. InvoiceRetryJob - renders invoices for eligible orders that still have none
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(expireHandler, retryHandler, jobs.Schedules{
//		ChallengeExpiry:  "0 * * * * *",
//		InvoiceRetry:     "0 */5 * * * *",
//		InvoiceBatchSize: 50,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Expressions include a seconds field. The invoice retry job skips a tick while the
// previous pass is still running, so a slow renderer never stacks passes.
//
// # Error Handling
//
// - Both jobs log failures and try again on the next tick
// - A failed job start stops any already running jobs
package jobs
