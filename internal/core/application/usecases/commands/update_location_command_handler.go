package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// UpdateLocationCommandHandler records an agent's position on the order it carries and
// on the agent itself, so proximity queries see where the agent is.
type UpdateLocationCommandHandler struct {
	uowFactory UoWFactory
	clock      kernel.Clock
}

func NewUpdateLocationCommandHandler(uowFactory UoWFactory, clock kernel.Clock) UpdateLocationCommandHandler {
	return UpdateLocationCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h UpdateLocationCommandHandler) Handle(ctx context.Context, cmd UpdateLocationCommand) error {
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
	if err = o.UpdateLocation(cmd.Agent(), cmd.Location(), cmd.Note(), h.clock.Now()); err != nil {
		return err
	}

	a, err := agentRepo.Get(ctx, cmd.Agent().ID())
	if err != nil {
		return err
	}
	a.MoveTo(cmd.Location())

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = agentRepo.Update(ctx, a); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
