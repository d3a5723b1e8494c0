package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// SelfAssignCommandHandler lets an available agent claim a pending or processing order.
//
// The claim is a single conditional update, so of any number of agents racing for the
// same order exactly one wins. The winner's order then moves to packaging in the same
// transaction. Losers get order.ErrAlreadyAssigned, or a more precise error when the
// order turns out to be missing or in a status that cannot be claimed.
type SelfAssignCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
	clock      kernel.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewSelfAssignCommandHandler(
	uowFactory UoWFactory,
	dispatcher services.OrderDispatcher,
	clock kernel.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) SelfAssignCommandHandler {
	return SelfAssignCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		clock:      clock,
		notifier:   notifier,
		logger:     logger.With("component", "SelfAssignCommandHandler"),
	}
}

func (h SelfAssignCommandHandler) Handle(ctx context.Context, cmd SelfAssignCommand) (*order.Order, error) {
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
	agentRepo := uow.AgentRepository()
	agentActor := cmd.Agent()

	a, err := agentRepo.Get(ctx, agentActor.ID())
	if err != nil {
		return nil, err
	}
	if err = h.dispatcher.CheckClaimant(a, agentActor); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	claimed, err := orderRepo.ClaimDelivery(ctx, cmd.OrderID(), agentActor.ID(), now, order.SelfClaimStatuses())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, h.diagnose(ctx, orderRepo, cmd.OrderID(), agentActor.ID(), now)
	}

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = o.ConfirmClaim(agentActor, now); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "order claimed", "order", o.Number(), "agent", agentActor.ID().String())
	notify(ctx, h.notifier, h.logger, customerNotification(o, ports.TemplateAgentAssigned, map[string]string{
		"agentName": a.Name(),
	}))

	return o, nil
}

// diagnose explains a claim that matched no row by replaying it on a fresh copy of
// the order.
func (h SelfAssignCommandHandler) diagnose(
	ctx context.Context,
	repo ports.OrderRepository,
	orderID, agentID kernel.UUID,
	now time.Time,
) error {
	o, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err = o.Claim(agentID, now); err != nil {
		return err
	}
	return fmt.Errorf("%w: order %s", order.ErrAlreadyAssigned, o.Number())
}
