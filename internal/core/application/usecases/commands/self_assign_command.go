package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrSelfAssignCommandIsNotConstructed = errors.New(
	"SelfAssignCommand must be created via NewSelfAssignCommand constructor",
)

// SelfAssignCommand is a delivery agent claiming an unassigned order.
type SelfAssignCommand struct {
	orderID kernel.UUID
	agent   kernel.Actor

	guard guard.ConstructorGuard
}

func NewSelfAssignCommand(orderID kernel.UUID, agent kernel.Actor) (SelfAssignCommand, error) {
	cmd := SelfAssignCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setActor(&cmd.agent, agent),
	); err != nil {
		return SelfAssignCommand{}, err
	}

	return cmd, nil
}

func (c SelfAssignCommand) Validate() error {
	return c.guard.Validate(ErrSelfAssignCommandIsNotConstructed)
}

func (c SelfAssignCommand) OrderID() kernel.UUID { return c.orderID }
func (c SelfAssignCommand) Agent() kernel.Actor  { return c.agent }
