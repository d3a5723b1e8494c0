package commands_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logging"
)

func TestRetryInvoicesCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockOrderUoWFactory)
	invoices := new(MockInvoiceFirer)
	factory.On("Create").Return(uow).Once()

	first, second, third := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	trigger := func(id kernel.UUID) commands.TriggerInvoiceCommand {
		cmd, err := commands.NewTriggerInvoiceCommand(id)
		require.NoError(t, err)
		return cmd
	}

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("ListInvoicePending", ctx, 10).Return([]kernel.UUID{first, second, third}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		invoices.On("Handle", ctx, trigger(first)).Return(commands.TriggerInvoiceResult{Rendered: true}, nil).Once(),
		invoices.On("Handle", ctx, trigger(second)).Return(commands.TriggerInvoiceResult{}, errors.New("timeout")).Once(),
		invoices.On("Handle", ctx, trigger(third)).Return(commands.TriggerInvoiceResult{Rendered: true}, nil).Once(),
	)

	cmd, err := commands.NewRetryInvoicesCommand(10)
	require.NoError(t, err)

	rendered, err := commands.NewRetryInvoicesCommandHandler(factory, invoices, logging.Discard()).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, rendered)
	invoices.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRetryInvoicesCommandHandler_Handle_ListError(t *testing.T) {
	ctx := t.Context()
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockOrderUoWFactory)
	invoices := new(MockInvoiceFirer)
	factory.On("Create").Return(uow).Once()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	orderRepo.On("ListInvoicePending", ctx, 5).Return(nil, errors.New("db down")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewRetryInvoicesCommand(5)
	require.NoError(t, err)

	_, err = commands.NewRetryInvoicesCommandHandler(factory, invoices, logging.Discard()).Handle(ctx, cmd)

	require.EqualError(t, err, "db down")
	invoices.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestNewRetryInvoicesCommand_BatchSize(t *testing.T) {
	_, err := commands.NewRetryInvoicesCommand(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
