package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// AdvanceDeliveryCommandHandler moves an order's delivery leg forward for its assigned
// agent. A failed delivery also counts against the agent in the same transaction.
type AdvanceDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      kernel.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewAdvanceDeliveryCommandHandler(
	uowFactory UoWFactory,
	clock kernel.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) AdvanceDeliveryCommandHandler {
	return AdvanceDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		notifier:   notifier,
		logger:     logger.With("component", "AdvanceDeliveryCommandHandler"),
	}
}

func (h AdvanceDeliveryCommandHandler) Handle(ctx context.Context, cmd AdvanceDeliveryCommand) (*order.Order, error) {
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

	if err = o.AdvanceDelivery(cmd.Target(), cmd.Agent(), cmd.Note(), h.clock.Now()); err != nil {
		return nil, err
	}

	if cmd.Target() == order.DeliveryFailed {
		agentRepo := uow.AgentRepository()
		a, getErr := agentRepo.Get(ctx, cmd.Agent().ID())
		if getErr != nil {
			return nil, getErr
		}
		a.RecordFailedDelivery()
		if err = agentRepo.Update(ctx, a); err != nil {
			return nil, err
		}
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	switch cmd.Target() {
	case order.DeliveryOutForDelivery:
		notify(ctx, h.notifier, h.logger, customerNotification(o, ports.TemplateOutForDelivery, nil))
	case order.DeliveryFailed:
		h.logger.WarnContext(ctx, "delivery failed", "order", o.Number(), "agent", cmd.Agent().ID().String())
		notify(ctx, h.notifier, h.logger, customerNotification(o, ports.TemplateDeliveryFailed, map[string]string{
			"reason": cmd.Note(),
		}))
	}

	return o, nil
}
