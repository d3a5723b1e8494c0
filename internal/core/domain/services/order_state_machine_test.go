package services_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/logging"
)

func TestOrderStateMachine_Apply(t *testing.T) {
	var buf bytes.Buffer
	machine := services.NewOrderStateMachine(kernel.FixedClock{At: now}, logging.NewWithWriter(&buf, "info"))
	customer, supplier, admin := newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleSupplier), newActor(t, kernel.RoleAdmin)
	o := newProcessingOrder(t, customer, supplier, admin)

	require.NoError(t, machine.Apply(o, order.StatusOutForDelivery, admin, ""))
	require.NoError(t, machine.Apply(o, order.StatusDamaged, supplier, "box crushed"))

	assert.Equal(t, order.StatusDamaged, o.Status())
	assert.Contains(t, buf.String(), "manual follow-up")
	assert.Contains(t, buf.String(), "box crushed")
	history := o.History()
	assert.Equal(t, now, history[len(history)-1].At)
}

func TestOrderStateMachine_Apply_Rejected(t *testing.T) {
	machine := services.NewOrderStateMachine(kernel.FixedClock{At: now}, logging.Discard())
	customer, supplier, admin := newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleSupplier), newActor(t, kernel.RoleAdmin)
	o := newProcessingOrder(t, customer, supplier, admin)
	before := o.History()

	err := machine.Apply(o, order.StatusDelivered, supplier, "")

	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Equal(t, before, o.History())
	assert.ErrorIs(t, machine.Apply(&order.Order{}, order.StatusCancelled, admin, ""), order.ErrOrderIsNotConstructed)
}
