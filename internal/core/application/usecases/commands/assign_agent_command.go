package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrAssignAgentCommandIsNotConstructed = errors.New(
	"AssignAgentCommand must be created via NewAssignAgentCommand constructor",
)

// AssignAgentCommand is an admin or supplier handing an order to a delivery agent.
type AssignAgentCommand struct {
	orderID kernel.UUID
	agentID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewAssignAgentCommand(orderID, agentID kernel.UUID, actor kernel.Actor) (AssignAgentCommand, error) {
	cmd := AssignAgentCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setOrderID(&cmd.agentID, agentID),
		setActor(&cmd.actor, actor),
	); err != nil {
		return AssignAgentCommand{}, err
	}

	return cmd, nil
}

func (c AssignAgentCommand) Validate() error {
	return c.guard.Validate(ErrAssignAgentCommandIsNotConstructed)
}

func (c AssignAgentCommand) OrderID() kernel.UUID { return c.orderID }
func (c AssignAgentCommand) AgentID() kernel.UUID { return c.agentID }
func (c AssignAgentCommand) Actor() kernel.Actor  { return c.actor }
