package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logging"
)

func (f *dispatchFixture) advanceHandler() commands.AdvanceDeliveryCommandHandler {
	return commands.NewAdvanceDeliveryCommandHandler(f.factory, clock, f.notifier, logging.Discard())
}

func TestAdvanceDeliveryCommandHandler_Handle_OutForDelivery(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	agentActor := newActor(t, kernel.RoleDeliveryAssociate)
	o := newPendingOrder(t, newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleSupplier), order.PaymentCashOnDelivery)
	require.NoError(t, o.Claim(agentActor.ID(), now))
	require.NoError(t, o.ConfirmClaim(agentActor, now))

	cmd, err := commands.NewAdvanceDeliveryCommand(o.ID(), agentActor, order.DeliveryOutForDelivery, "")
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.orderRepo).Once(),
		f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orderRepo.On("Update", ctx, o).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
			return n.TemplateKey == ports.TemplateOutForDelivery
		})).Return(nil).Once(),
	)
	f.uow.On("Rollback", ctx).Return(nil).Once()

	got, err := f.advanceHandler().Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.StatusOutForDelivery, got.Status())
	assert.Equal(t, order.DeliveryOutForDelivery, got.Delivery().Status())
	f.uow.AssertNotCalled(t, "AgentRepository")
	f.uow.AssertExpectations(t)
}

func TestAdvanceDeliveryCommandHandler_Handle_FailedCountsAgainstAgent(t *testing.T) {
	ctx := t.Context()
	f := newDispatchFixture()
	agentActor := newActor(t, kernel.RoleDeliveryAssociate)
	a := newAvailableAgent(t, agentActor.ID())
	o := newOutForDeliveryOrder(t, newActor(t, kernel.RoleCustomer), agentActor)

	cmd, err := commands.NewAdvanceDeliveryCommand(o.ID(), agentActor, order.DeliveryFailed, "nobody home")
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.orderRepo).Once(),
		f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.uow.On("AgentRepository").Return(f.agentRepo).Once(),
		f.agentRepo.On("Get", ctx, a.ID()).Return(a, nil).Once(),
		f.agentRepo.On("Update", ctx, a).Return(nil).Once(),
		f.orderRepo.On("Update", ctx, o).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
			return n.TemplateKey == ports.TemplateDeliveryFailed && n.Payload["reason"] == "nobody home"
		})).Return(nil).Once(),
	)
	f.uow.On("Rollback", ctx).Return(nil).Once()

	got, err := f.advanceHandler().Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.StatusFailed, got.Status())
	assert.Equal(t, 1, a.FailedDeliveries())
	f.agentRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAdvanceDeliveryCommandHandler_Handle_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		target  order.DeliveryStatus
		other   bool
		wantErr error
	}{
		{"delivered needs verification", order.DeliveryDelivered, false, order.ErrInvalidDeliveryTransition},
		{"backwards", order.DeliveryPackaging, false, order.ErrInvalidDeliveryTransition},
		{"not the assigned agent", order.DeliveryFailed, true, errs.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newDispatchFixture()
			agentActor := newActor(t, kernel.RoleDeliveryAssociate)
			o := newOutForDeliveryOrder(t, newActor(t, kernel.RoleCustomer), agentActor)
			caller := agentActor
			if tt.other {
				caller = newActor(t, kernel.RoleDeliveryAssociate)
			}

			cmd, err := commands.NewAdvanceDeliveryCommand(o.ID(), caller, tt.target, "")
			require.NoError(t, err)

			mock.InOrder(
				f.uow.On("Begin", ctx).Return(nil).Once(),
				f.uow.On("OrderRepository").Return(f.orderRepo).Once(),
				f.orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
				f.uow.On("Rollback", ctx).Return(nil).Once(),
			)

			_, err = f.advanceHandler().Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, order.StatusOutForDelivery, o.Status())
			f.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestNewAdvanceDeliveryCommand_UnknownTarget(t *testing.T) {
	_, err := commands.NewAdvanceDeliveryCommand(kernel.NewUUID(), newActor(t, kernel.RoleDeliveryAssociate), "teleported", "")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
