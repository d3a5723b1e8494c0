package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// ApplyTransitionCommandHandler performs role-scoped status changes requested through
// the API. The write is optimistic: a concurrent change to the same order makes the
// update fail with errs.ErrVersionIsInvalid and nothing is persisted.
//
// Example:
//
//	cmd, _ := NewApplyTransitionCommand(orderID, admin, order.StatusProcessing, "")
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, order.ErrInvalidTransition):
//	    // not allowed for this role from the current status
//	case errors.Is(err, errs.ErrVersionIsInvalid):
//	    // lost a race, reload and retry
//	}
type ApplyTransitionCommandHandler struct {
	uowFactory OrderUoWFactory
	machine    *services.OrderStateMachine
	invoices   InvoiceFirer
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewApplyTransitionCommandHandler(
	uowFactory OrderUoWFactory,
	machine *services.OrderStateMachine,
	invoices InvoiceFirer,
	notifier ports.Notifier,
	logger *slog.Logger,
) ApplyTransitionCommandHandler {
	return ApplyTransitionCommandHandler{
		uowFactory: uowFactory,
		machine:    machine,
		invoices:   invoices,
		notifier:   notifier,
		logger:     logger.With("component", "ApplyTransitionCommandHandler"),
	}
}

func (h ApplyTransitionCommandHandler) Handle(ctx context.Context, cmd ApplyTransitionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = h.machine.Apply(o, cmd.Target(), cmd.Actor(), cmd.Note()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	notify(ctx, h.notifier, h.logger, customerNotification(o, ports.TemplateOrderStatusChanged, nil))
	if cmd.Target() == order.StatusDelivered {
		fireInvoice(ctx, h.invoices, h.logger, o.ID())
	}

	return o, nil
}
