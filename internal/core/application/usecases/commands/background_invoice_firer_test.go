package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logging"
)

func TestBackgroundInvoiceFirer_DoesNotWaitForRenderer(t *testing.T) {
	next := &MockInvoiceFirer{}
	firer, err := commands.NewBackgroundInvoiceFirer(next, 2, time.Minute, logging.Discard())
	require.NoError(t, err)
	cmd, err := commands.NewTriggerInvoiceCommand(kernel.NewUUID())
	require.NoError(t, err)

	release := make(chan struct{})
	var runCtxErr error
	next.On("Handle", mock.Anything, cmd).
		Run(func(args mock.Arguments) {
			<-release
			runCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(commands.TriggerInvoiceResult{}, errors.New("renderer down")).Once()

	ctx, cancel := context.WithCancel(t.Context())
	res, err := firer.Handle(ctx, cmd)
	cancel()

	require.NoError(t, err)
	assert.False(t, res.Rendered)

	close(release)
	firer.Wait()
	require.NoError(t, runCtxErr, "the trigger outlives the request")
	next.AssertExpectations(t)
}

func TestBackgroundInvoiceFirer_OverLimitIsLeftForRetry(t *testing.T) {
	next := &MockInvoiceFirer{}
	firer, err := commands.NewBackgroundInvoiceFirer(next, 1, time.Minute, logging.Discard())
	require.NoError(t, err)
	first, err := commands.NewTriggerInvoiceCommand(kernel.NewUUID())
	require.NoError(t, err)
	second, err := commands.NewTriggerInvoiceCommand(kernel.NewUUID())
	require.NoError(t, err)

	release := make(chan struct{})
	next.On("Handle", mock.Anything, first).
		Run(func(mock.Arguments) { <-release }).
		Return(commands.TriggerInvoiceResult{Rendered: true, Ref: "INV-1"}, nil).Once()

	_, err = firer.Handle(t.Context(), first)
	require.NoError(t, err)
	_, err = firer.Handle(t.Context(), second)
	require.NoError(t, err)

	close(release)
	firer.Wait()
	next.AssertExpectations(t)
	next.AssertNotCalled(t, "Handle", mock.Anything, second)
}

func TestBackgroundInvoiceFirer_TimeoutBoundsTrigger(t *testing.T) {
	next := &MockInvoiceFirer{}
	firer, err := commands.NewBackgroundInvoiceFirer(next, 1, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	cmd, err := commands.NewTriggerInvoiceCommand(kernel.NewUUID())
	require.NoError(t, err)

	var runCtxErr error
	next.On("Handle", mock.Anything, cmd).
		Run(func(args mock.Arguments) {
			runCtx := args.Get(0).(context.Context)
			<-runCtx.Done()
			runCtxErr = runCtx.Err()
		}).
		Return(commands.TriggerInvoiceResult{}, context.DeadlineExceeded).Once()

	_, err = firer.Handle(t.Context(), cmd)
	require.NoError(t, err)

	firer.Wait()
	require.ErrorIs(t, runCtxErr, context.DeadlineExceeded)
}

func TestNewBackgroundInvoiceFirer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		next    commands.InvoiceFirer
		limit   int
		timeout time.Duration
		want    error
	}{
		{"missing next", nil, 1, time.Second, errs.ErrValueIsRequired},
		{"zero limit", &MockInvoiceFirer{}, 0, time.Second, errs.ErrValueIsOutOfRange},
		{"zero timeout", &MockInvoiceFirer{}, 1, 0, errs.ErrValueIsOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commands.NewBackgroundInvoiceFirer(tt.next, tt.limit, tt.timeout, logging.Discard())
			require.ErrorIs(t, err, tt.want)
		})
	}

	firer, err := commands.NewBackgroundInvoiceFirer(&MockInvoiceFirer{}, 1, time.Second, logging.Discard())
	require.NoError(t, err)
	_, err = firer.Handle(t.Context(), commands.TriggerInvoiceCommand{})
	require.ErrorIs(t, err, commands.ErrTriggerInvoiceCommandIsNotConstructed)
}
