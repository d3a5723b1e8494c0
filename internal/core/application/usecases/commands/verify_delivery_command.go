package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrVerifyDeliveryCommandIsNotConstructed = errors.New(
		"VerifyDeliveryCommand must be created via NewVerifyDeliveryCommand constructor",
	)
	ErrProofIsRequired = errs.NewValueIsRequiredError("exactly one of code or qrPayload")
)

// VerifyDeliveryCommand carries the proof of handover: the code the customer read out,
// or the QR payload the agent scanned. Exactly one must be given.
type VerifyDeliveryCommand struct {
	orderID   kernel.UUID
	agent     kernel.Actor
	code      string
	qrPayload string

	guard guard.ConstructorGuard
}

func NewVerifyDeliveryCommand(orderID kernel.UUID, agent kernel.Actor, code, qrPayload string) (VerifyDeliveryCommand, error) {
	cmd := VerifyDeliveryCommand{
		code:      strings.TrimSpace(code),
		qrPayload: strings.TrimSpace(qrPayload),
		guard:     guard.NewConstructorGuard(),
	}

	var proofErr error
	if (cmd.code == "") == (cmd.qrPayload == "") {
		proofErr = ErrProofIsRequired
	}

	if err := errors.Join(
		setOrderID(&cmd.orderID, orderID),
		setActor(&cmd.agent, agent),
		proofErr,
	); err != nil {
		return VerifyDeliveryCommand{}, err
	}

	return cmd, nil
}

func (c VerifyDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrVerifyDeliveryCommandIsNotConstructed)
}

func (c VerifyDeliveryCommand) OrderID() kernel.UUID { return c.orderID }
func (c VerifyDeliveryCommand) Agent() kernel.Actor  { return c.agent }
func (c VerifyDeliveryCommand) Code() string         { return c.code }
func (c VerifyDeliveryCommand) QRPayload() string    { return c.qrPayload }
