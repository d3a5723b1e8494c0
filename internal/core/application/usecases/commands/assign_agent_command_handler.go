package commands

import (
	"context"
	"fmt"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// AssignAgentCommandHandler assigns a delivery agent to a processing order.
// The dispatcher checks produce precise errors; the conditional write in the
// repository decides between concurrent assigners.
type AssignAgentCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
	clock      kernel.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewAssignAgentCommandHandler(
	uowFactory UoWFactory,
	dispatcher services.OrderDispatcher,
	clock kernel.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) AssignAgentCommandHandler {
	return AssignAgentCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		clock:      clock,
		notifier:   notifier,
		logger:     logger.With("component", "AssignAgentCommandHandler"),
	}
}

func (h AssignAgentCommandHandler) Handle(ctx context.Context, cmd AssignAgentCommand) error {
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
	agentRepo := uow.AgentRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	a, err := agentRepo.Get(ctx, cmd.AgentID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = h.dispatcher.PrepareAssignment(o, a, cmd.Actor(), now); err != nil {
		return err
	}

	claimed, err := orderRepo.ClaimDelivery(ctx, o.ID(), a.ID(), now, order.AssignableStatuses())
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("%w: order %s", order.ErrAlreadyAssigned, o.Number())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "delivery agent assigned",
		"order", o.Number(), "agent", a.ID().String(), "by", cmd.Actor().String())
	notify(ctx, h.notifier, h.logger, ports.Notification{
		Channel:     ports.ChannelSMS,
		Recipient:   a.Phone(),
		TemplateKey: ports.TemplateAgentAssigned,
		Payload:     map[string]string{"orderNumber": o.Number(), "city": o.Address().City()},
	})

	return nil
}
