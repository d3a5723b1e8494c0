package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrAdvanceDeliveryCommandIsNotConstructed = errors.New(
	"AdvanceDeliveryCommand must be created via NewAdvanceDeliveryCommand constructor",
)

// AdvanceDeliveryCommand moves the delivery leg of an order to target.
type AdvanceDeliveryCommand struct {
	orderID kernel.UUID
	agent   kernel.Actor
	target  order.DeliveryStatus
	note    string

	guard guard.ConstructorGuard
}

func NewAdvanceDeliveryCommand(
	orderID kernel.UUID,
	agent kernel.Actor,
	target order.DeliveryStatus,
	note string,
) (AdvanceDeliveryCommand, error) {
	cmd := AdvanceDeliveryCommand{
		note:  strings.TrimSpace(note),
		guard: guard.NewConstructorGuard(),
	}

	_, targetErr := order.ParseDeliveryStatus(string(target))
	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setActor(&cmd.agent, agent),
		targetErr,
	); err != nil {
		return AdvanceDeliveryCommand{}, err
	}
	cmd.target = target

	return cmd, nil
}

func (c AdvanceDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceDeliveryCommandIsNotConstructed)
}

func (c AdvanceDeliveryCommand) OrderID() kernel.UUID         { return c.orderID }
func (c AdvanceDeliveryCommand) Agent() kernel.Actor          { return c.agent }
func (c AdvanceDeliveryCommand) Target() order.DeliveryStatus { return c.target }
func (c AdvanceDeliveryCommand) Note() string                 { return c.note }
