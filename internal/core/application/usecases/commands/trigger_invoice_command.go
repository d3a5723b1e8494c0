package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrTriggerInvoiceCommandIsNotConstructed = errors.New(
	"TriggerInvoiceCommand must be created via NewTriggerInvoiceCommand constructor",
)

type TriggerInvoiceCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewTriggerInvoiceCommand(orderID kernel.UUID) (TriggerInvoiceCommand, error) {
	cmd := TriggerInvoiceCommand{guard: guard.NewConstructorGuard()}
	if err := setOrderID(&cmd.orderID, orderID); err != nil {
		return TriggerInvoiceCommand{}, err
	}
	return cmd, nil
}

func (c TriggerInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrTriggerInvoiceCommandIsNotConstructed)
}

func (c TriggerInvoiceCommand) OrderID() kernel.UUID { return c.orderID }
