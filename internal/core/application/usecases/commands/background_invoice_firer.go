package commands

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"orderflow/internal/pkg/errs"
)

// BackgroundInvoiceFirer runs invoice triggers off the request path, so a slow or
// failing renderer never holds up the transition that made the order eligible.
// Triggers over the concurrency limit are not started; the invoice retry job picks
// those orders up.
type BackgroundInvoiceFirer struct {
	next    InvoiceFirer
	timeout time.Duration
	logger  *slog.Logger
	group   errgroup.Group
}

func NewBackgroundInvoiceFirer(
	next InvoiceFirer,
	limit int,
	timeout time.Duration,
	logger *slog.Logger,
) (*BackgroundInvoiceFirer, error) {
	if next == nil {
		return nil, errs.NewValueIsRequiredError("next")
	}
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "∞")
	}
	if timeout <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("timeout", timeout, "1ns", "∞")
	}

	f := &BackgroundInvoiceFirer{
		next:    next,
		timeout: timeout,
		logger:  logger.With("component", "BackgroundInvoiceFirer"),
	}
	f.group.SetLimit(limit)
	return f, nil
}

// Handle schedules the trigger and returns at once with an empty result. The trigger
// outlives the caller's context but not the timeout.
func (f *BackgroundInvoiceFirer) Handle(ctx context.Context, cmd TriggerInvoiceCommand) (TriggerInvoiceResult, error) {
	if err := cmd.Validate(); err != nil {
		return TriggerInvoiceResult{}, err
	}

	detached := context.WithoutCancel(ctx)
	started := f.group.TryGo(func() error {
		runCtx, cancel := context.WithTimeout(detached, f.timeout)
		defer cancel()

		res, err := f.next.Handle(runCtx, cmd)
		if err != nil {
			f.logger.ErrorContext(runCtx, "invoice trigger failed", "order", cmd.OrderID().String(), "error", err)
			return nil
		}
		f.logger.DebugContext(runCtx, "invoice trigger finished",
			"order", cmd.OrderID().String(), "rendered", res.Rendered)
		return nil
	})
	if !started {
		f.logger.WarnContext(ctx, "invoice trigger left to the retry job", "order", cmd.OrderID().String())
	}

	return TriggerInvoiceResult{}, nil
}

// Wait blocks until every started trigger has finished.
func (f *BackgroundInvoiceFirer) Wait() {
	_ = f.group.Wait()
}
