package jobs

import (
	"fmt"
	"log/slog"
)

// Schedules holds the cron expressions (with seconds) of the background jobs.
type Schedules struct {
	ChallengeExpiry  string
	InvoiceRetry     string
	InvoiceBatchSize int
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	challengeExpiryJob *ChallengeExpiryJob
	invoiceRetryJob    *InvoiceRetryJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	expireChallengesHandler ExpireChallengesHandler,
	retryInvoicesHandler RetryInvoicesHandler,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		challengeExpiryJob: NewChallengeExpiryJob(expireChallengesHandler, schedules.ChallengeExpiry, logger),
		invoiceRetryJob: NewInvoiceRetryJob(
			retryInvoicesHandler, schedules.InvoiceRetry, schedules.InvoiceBatchSize, logger,
		),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.challengeExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start challenge expiry job: %w", err)
	}

	if err := jm.invoiceRetryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.challengeExpiryJob.Stop()
		return fmt.Errorf("failed to start invoice retry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running passes.
func (jm *JobManager) StopAll() {
	jm.invoiceRetryJob.Stop()
	jm.challengeExpiryJob.Stop()
}
