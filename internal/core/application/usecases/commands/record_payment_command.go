package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrRecordPaymentCommandIsNotConstructed = errors.New(
	"RecordPaymentCommand must be created via NewRecordPaymentCommand constructor",
)

// RecordPaymentCommand is a payment status reported by the payment processor.
type RecordPaymentCommand struct {
	orderID       kernel.UUID
	status        order.PaymentStatus
	transactionID string

	guard guard.ConstructorGuard
}

func NewRecordPaymentCommand(orderID kernel.UUID, status order.PaymentStatus, transactionID string) (RecordPaymentCommand, error) {
	cmd := RecordPaymentCommand{
		transactionID: strings.TrimSpace(transactionID),
		guard:         guard.NewConstructorGuard(),
	}

	_, statusErr := order.ParsePaymentStatus(string(status))
	if err := errors.Join(setOrderID(&cmd.orderID, orderID), statusErr); err != nil {
		return RecordPaymentCommand{}, err
	}
	cmd.status = status

	return cmd, nil
}

func (c RecordPaymentCommand) Validate() error {
	return c.guard.Validate(ErrRecordPaymentCommandIsNotConstructed)
}

func (c RecordPaymentCommand) OrderID() kernel.UUID        { return c.orderID }
func (c RecordPaymentCommand) Status() order.PaymentStatus { return c.status }
func (c RecordPaymentCommand) TransactionID() string       { return c.transactionID }
