package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
)

// RecordPaymentCommandHandler applies processor-reported payment statuses. A prepaid
// order that becomes paid is invoiced right after commit.
type RecordPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	invoices   InvoiceFirer
	logger     *slog.Logger
}

func NewRecordPaymentCommandHandler(uowFactory OrderUoWFactory, invoices InvoiceFirer, logger *slog.Logger) RecordPaymentCommandHandler {
	return RecordPaymentCommandHandler{
		uowFactory: uowFactory,
		invoices:   invoices,
		logger:     logger.With("component", "RecordPaymentCommandHandler"),
	}
}

func (h RecordPaymentCommandHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	changed, err := o.RecordPayment(cmd.Status(), cmd.TransactionID())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "payment status recorded",
		"order", o.Number(), "status", o.PaymentStatus().String(), "transaction", o.TransactionID())
	if o.PaymentStatus() == order.PaymentPaid && o.PaymentMethod().IsPrepaid() {
		fireInvoice(ctx, h.invoices, h.logger, o.ID())
	}

	return nil
}
