package commands

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

// ExpireChallengesCommandHandler is storage hygiene: verification already treats an
// expired challenge as absent, this only removes the leftovers.
type ExpireChallengesCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      kernel.Clock
}

func NewExpireChallengesCommandHandler(uowFactory OrderUoWFactory, clock kernel.Clock) ExpireChallengesCommandHandler {
	return ExpireChallengesCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle returns the number of orders whose challenge was cleared.
func (h ExpireChallengesCommandHandler) Handle(ctx context.Context, cmd ExpireChallengesCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cleared, err := uow.OrderRepository().ClearExpiredChallenges(ctx, h.clock.Now())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return cleared, nil
}
