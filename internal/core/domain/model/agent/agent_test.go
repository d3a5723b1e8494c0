package agent_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/agent"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

func TestNewAgent(t *testing.T) {
	a, err := agent.NewAgent(kernel.NewUUID(), "Ravi Kumar", "+919800000002")

	require.NoError(t, err)
	assert.NoError(t, a.Validate())
	assert.False(t, a.IsAvailable())
	assert.Nil(t, a.Location())
	assert.True(t, a.TotalEarnings().IsZero())
}

func TestNewAgent_Invalid(t *testing.T) {
	a, err := agent.NewAgent(kernel.UUID{}, "", " ")

	assert.Nil(t, a)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "phone")
}

func TestAgent_Availability(t *testing.T) {
	a, _ := agent.NewAgent(kernel.NewUUID(), "Ravi", "+91")

	assert.ErrorIs(t, a.EnsureAvailable(), agent.ErrAgentUnavailable)

	a.GoOnline()
	assert.False(t, a.IsAvailable(), "online but not verified")

	a.Verify()
	assert.True(t, a.IsAvailable())
	assert.NoError(t, a.EnsureAvailable())

	a.GoOffline()
	assert.ErrorIs(t, a.EnsureAvailable(), errs.ErrValueIsInvalid)
}

func TestAgent_Counters(t *testing.T) {
	a, _ := agent.NewAgent(kernel.NewUUID(), "Ravi", "+91")

	require.NoError(t, a.RecordCompletedDelivery(decimal.NewFromInt(40)))
	require.NoError(t, a.RecordCompletedDelivery(decimal.RequireFromString("100.50")))
	a.RecordFailedDelivery()

	assert.Equal(t, 2, a.CompletedDeliveries())
	assert.Equal(t, 1, a.FailedDeliveries())
	assert.True(t, a.TotalEarnings().Equal(decimal.RequireFromString("140.50")))

	assert.ErrorIs(t, a.RecordCompletedDelivery(decimal.NewFromInt(-1)), errs.ErrValueIsInvalid)
	assert.Equal(t, 2, a.CompletedDeliveries())
}

func TestAgent_MoveTo(t *testing.T) {
	a, _ := agent.NewAgent(kernel.NewUUID(), "Ravi", "+91")
	loc, _ := kernel.NewLocation(12.9, 77.6)

	a.MoveTo(loc)
	require.NotNil(t, a.Location())
	assert.True(t, loc.IsEqual(*a.Location()))

	a.MoveTo(kernel.Location{})
	assert.True(t, loc.IsEqual(*a.Location()), "zero location is ignored")
}

func TestRestoreAgent(t *testing.T) {
	id := kernel.NewUUID()
	loc, _ := kernel.NewLocation(1, 2)

	a, err := agent.RestoreAgent(id, "Ravi", "+91", true, true, &loc, 7, 2, decimal.NewFromInt(280), 3)

	require.NoError(t, err)
	assert.True(t, a.ID().IsEqual(id))
	assert.True(t, a.IsAvailable())
	assert.Equal(t, 7, a.CompletedDeliveries())
	assert.Equal(t, 3, a.Version())

	_, err = agent.RestoreAgent(id, "Ravi", "+91", true, true, nil, -1, 0, decimal.Zero, 0)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
