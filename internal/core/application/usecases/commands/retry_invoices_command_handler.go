package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
)

// RetryInvoicesCommandHandler picks up orders whose invoice render failed or was never
// attempted. One failing order does not stop the batch.
type RetryInvoicesCommandHandler struct {
	uowFactory OrderUoWFactory
	invoices   InvoiceFirer
	logger     *slog.Logger
}

func NewRetryInvoicesCommandHandler(uowFactory OrderUoWFactory, invoices InvoiceFirer, logger *slog.Logger) RetryInvoicesCommandHandler {
	return RetryInvoicesCommandHandler{
		uowFactory: uowFactory,
		invoices:   invoices,
		logger:     logger.With("component", "RetryInvoicesCommandHandler"),
	}
}

// Handle returns how many invoices were rendered.
func (h RetryInvoicesCommandHandler) Handle(ctx context.Context, cmd RetryInvoicesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	ids, err := h.pending(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	rendered := 0
	for _, id := range ids {
		trigger, cmdErr := NewTriggerInvoiceCommand(id)
		if cmdErr != nil {
			return rendered, cmdErr
		}

		result, fireErr := h.invoices.Handle(ctx, trigger)
		if fireErr != nil {
			h.logger.WarnContext(ctx, "invoice retry failed", "order", id.String(), "error", fireErr)
			continue
		}
		if result.Rendered {
			rendered++
		}
	}

	return rendered, nil
}

func (h RetryInvoicesCommandHandler) pending(ctx context.Context, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().ListInvoicePending(ctx, limit)
}
