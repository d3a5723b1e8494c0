package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRetryInvoicesCommandIsNotConstructed = errors.New(
	"RetryInvoicesCommand must be created via NewRetryInvoicesCommand constructor",
)

// RetryInvoicesCommand re-fires the invoice trigger for up to batchSize eligible
// orders that still have no invoice.
type RetryInvoicesCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewRetryInvoicesCommand(batchSize int) (RetryInvoicesCommand, error) {
	if batchSize < 1 {
		return RetryInvoicesCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "∞")
	}
	return RetryInvoicesCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RetryInvoicesCommand) Validate() error {
	return c.guard.Validate(ErrRetryInvoicesCommandIsNotConstructed)
}

func (c RetryInvoicesCommand) BatchSize() int { return c.batchSize }
