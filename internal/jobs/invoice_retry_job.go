package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"orderflow/internal/core/application/usecases/commands"
)

type RetryInvoicesHandler interface {
	Handle(ctx context.Context, cmd commands.RetryInvoicesCommand) (int, error)
}

// InvoiceRetryJob re-fires invoice rendering for eligible orders that still have no
// invoice reference, typically after a renderer outage.
type InvoiceRetryJob struct {
	handler   RetryInvoicesHandler
	schedule  string
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewInvoiceRetryJob(handler RetryInvoicesHandler, schedule string, batchSize int, logger *slog.Logger) *InvoiceRetryJob {
	return &InvoiceRetryJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "invoice_retry_job"),
	}
}

func (j *InvoiceRetryJob) Start() error {
	if _, err := commands.NewRetryInvoicesCommand(j.batchSize); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Invoice retry job started", "schedule", j.schedule, "batch", j.batchSize)
	return nil
}

func (j *InvoiceRetryJob) Run() {
	ctx := context.Background()

	cmd, err := commands.NewRetryInvoicesCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Invoice retry job misconfigured", "error", err)
		return
	}

	rendered, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Invoice retry job failed", "error", err)
		return
	}
	if rendered > 0 {
		j.logger.InfoContext(ctx, "Pending invoices rendered", "count", rendered)
	}
}

func (j *InvoiceRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Invoice retry job stopped")
}
