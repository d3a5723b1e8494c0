package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrUpdateLocationCommandIsNotConstructed = errors.New(
	"UpdateLocationCommand must be created via NewUpdateLocationCommand constructor",
)

// UpdateLocationCommand is a position ping from the agent carrying an order.
type UpdateLocationCommand struct {
	orderID  kernel.UUID
	agent    kernel.Actor
	location kernel.Location
	note     string

	guard guard.ConstructorGuard
}

func NewUpdateLocationCommand(
	orderID kernel.UUID,
	agent kernel.Actor,
	location kernel.Location,
	note string,
) (UpdateLocationCommand, error) {
	cmd := UpdateLocationCommand{
		note:  strings.TrimSpace(note),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setActor(&cmd.agent, agent),
		location.Validate(),
	); err != nil {
		return UpdateLocationCommand{}, err
	}
	cmd.location = location

	return cmd, nil
}

func (c UpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateLocationCommandIsNotConstructed)
}

func (c UpdateLocationCommand) OrderID() kernel.UUID      { return c.orderID }
func (c UpdateLocationCommand) Agent() kernel.Actor       { return c.agent }
func (c UpdateLocationCommand) Location() kernel.Location { return c.location }
func (c UpdateLocationCommand) Note() string              { return c.note }
