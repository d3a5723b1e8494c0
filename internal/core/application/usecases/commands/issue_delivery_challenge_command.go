package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrIssueDeliveryChallengeCommandIsNotConstructed = errors.New(
	"IssueDeliveryChallengeCommand must be created via NewIssueDeliveryChallengeCommand constructor",
)

// IssueDeliveryChallengeCommand asks for a fresh delivery code and QR payload.
type IssueDeliveryChallengeCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewIssueDeliveryChallengeCommand(orderID kernel.UUID, actor kernel.Actor) (IssueDeliveryChallengeCommand, error) {
	cmd := IssueDeliveryChallengeCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setActor(&cmd.actor, actor),
	); err != nil {
		return IssueDeliveryChallengeCommand{}, err
	}

	return cmd, nil
}

func (c IssueDeliveryChallengeCommand) Validate() error {
	return c.guard.Validate(ErrIssueDeliveryChallengeCommandIsNotConstructed)
}

func (c IssueDeliveryChallengeCommand) OrderID() kernel.UUID { return c.orderID }
func (c IssueDeliveryChallengeCommand) Actor() kernel.Actor  { return c.actor }
