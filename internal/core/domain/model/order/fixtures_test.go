package order_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type parties struct {
	customer kernel.Actor
	supplier kernel.Actor
	admin    kernel.Actor
	agent    kernel.Actor
}

func newParties(t *testing.T) parties {
	t.Helper()
	mk := func(role kernel.Role) kernel.Actor {
		a, err := kernel.NewActor(kernel.NewUUID(), role)
		require.NoError(t, err)
		return a
	}
	return parties{
		customer: mk(kernel.RoleCustomer),
		supplier: mk(kernel.RoleSupplier),
		admin:    mk(kernel.RoleAdmin),
		agent:    mk(kernel.RoleDeliveryAssociate),
	}
}

func newAddress(t *testing.T) order.ShippingAddress {
	t.Helper()
	point, err := kernel.NewLocation(12.9716, 77.5946)
	require.NoError(t, err)
	addr, err := order.NewShippingAddress("Asha Rao", "+919800000001", "asha@example.com",
		"12 MG Road", "Bengaluru", "560001", point)
	require.NoError(t, err)
	return addr
}

func newPendingOrder(t *testing.T, p parties, method order.PaymentMethod) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), 2, decimal.NewFromInt(150), decimal.NewFromInt(120), "")
	require.NoError(t, err)
	charges, err := order.NewCharges(
		decimal.NewFromInt(240), decimal.Zero, decimal.NewFromInt(12),
		decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(40),
	)
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(),
		"ORD-000001",
		order.Checkout{
			CustomerID:     p.customer.ID(),
			Address:        newAddress(t),
			PaymentMethod:  method,
			DeliveryOption: order.DeliveryStandard,
		},
		p.supplier.ID(),
		[]order.Item{item},
		charges,
		now.Add(5*24*time.Hour),
		now,
	)
	require.NoError(t, err)
	return o
}

// newOutForDeliveryOrder returns an order claimed by p.agent and promoted out for delivery.
func newOutForDeliveryOrder(t *testing.T, p parties, method order.PaymentMethod) *order.Order {
	t.Helper()
	o := newPendingOrder(t, p, method)
	require.NoError(t, o.Claim(p.agent.ID(), now))
	require.NoError(t, o.ConfirmClaim(p.agent, now))
	require.NoError(t, o.AdvanceDelivery(order.DeliveryOutForDelivery, p.agent, "", now))
	return o
}

func newDeliveredOrder(t *testing.T, p parties, deliveredAt time.Time) *order.Order {
	t.Helper()
	o := newOutForDeliveryOrder(t, p, order.PaymentCashOnDelivery)
	_, err := o.ConfirmDelivery(p.agent, deliveredAt)
	require.NoError(t, err)
	return o
}
