package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrApplyTransitionCommandIsNotConstructed = errors.New(
	"ApplyTransitionCommand must be created via NewApplyTransitionCommand constructor",
)

// ApplyTransitionCommand asks for an order status change on behalf of actor.
type ApplyTransitionCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor
	target  order.Status
	note    string

	guard guard.ConstructorGuard
}

func NewApplyTransitionCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	target order.Status,
	note string,
) (ApplyTransitionCommand, error) {
	cmd := ApplyTransitionCommand{
		note:  strings.TrimSpace(note),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setActor(&cmd.actor, actor),
		target.Validate(),
	); err != nil {
		return ApplyTransitionCommand{}, err
	}
	cmd.target = target

	return cmd, nil
}

func (c ApplyTransitionCommand) Validate() error {
	return c.guard.Validate(ErrApplyTransitionCommandIsNotConstructed)
}

func (c ApplyTransitionCommand) OrderID() kernel.UUID { return c.orderID }
func (c ApplyTransitionCommand) Actor() kernel.Actor  { return c.actor }
func (c ApplyTransitionCommand) Target() order.Status { return c.target }
func (c ApplyTransitionCommand) Note() string         { return c.note }

func setOrderID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}

func setActor(dst *kernel.Actor, actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	*dst = actor
	return nil
}
