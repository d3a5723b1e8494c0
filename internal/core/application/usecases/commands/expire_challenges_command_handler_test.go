package commands_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
)

func TestExpireChallengesCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("ClearExpiredChallenges", ctx, now).Return(int64(3), nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	cleared, err := commands.NewExpireChallengesCommandHandler(factory, clock).Handle(ctx, commands.NewExpireChallengesCommand())

	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
	uow.AssertExpectations(t)
}

func TestExpireChallengesCommandHandler_Handle_Error(t *testing.T) {
	ctx := t.Context()
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	orderRepo.On("ClearExpiredChallenges", ctx, now).Return(int64(0), errors.New("db down")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	_, err := commands.NewExpireChallengesCommandHandler(factory, clock).Handle(ctx, commands.NewExpireChallengesCommand())

	require.EqualError(t, err, "db down")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestExpireChallengesCommandHandler_Handle_ZeroCommand(t *testing.T) {
	factory := new(MockOrderUoWFactory)

	_, err := commands.NewExpireChallengesCommandHandler(factory, clock).Handle(t.Context(), commands.ExpireChallengesCommand{})

	require.ErrorIs(t, err, commands.ErrExpireChallengesCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
