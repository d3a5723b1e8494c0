package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func newCategory(t *testing.T, fee string, withParent bool) *catalog.Category {
	t.Helper()
	var parent *kernel.UUID
	if withParent {
		p := kernel.NewUUID()
		parent = &p
	}
	c, err := catalog.NewCategory(kernel.NewUUID(), parent, dec(fee))
	require.NoError(t, err)
	return c
}

func newProduct(t *testing.T, supplierID kernel.UUID, category *catalog.Category, base string, discounted *string, gst string, stock int, variations ...catalog.Variation) *catalog.Product {
	t.Helper()
	var d *decimal.Decimal
	if discounted != nil {
		v := dec(*discounted)
		d = &v
	}
	p, err := catalog.NewProduct(kernel.NewUUID(), supplierID, category.ID(), "product", dec(base), d, dec(gst), stock, variations...)
	require.NoError(t, err)
	return p
}

func newCheckout(t *testing.T, customerID kernel.UUID, method order.PaymentMethod, option order.DeliveryOption) order.Checkout {
	t.Helper()
	point, err := kernel.NewLocation(12.9716, 77.5946)
	require.NoError(t, err)
	addr, err := order.NewShippingAddress("Asha Rao", "+919800000001", "", "12 MG Road", "Bengaluru", "560001", point)
	require.NoError(t, err)
	return order.Checkout{
		CustomerID:     customerID,
		Address:        addr,
		PaymentMethod:  method,
		DeliveryOption: option,
	}
}

func newFactory(t *testing.T) services.OrderFactory {
	t.Helper()
	engine, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)
	return services.NewOrderFactory(engine)
}

// newOutForDeliveryOrder builds an order claimed by agent and out for delivery.
func newOutForDeliveryOrder(t *testing.T, customer, agent kernel.Actor) *order.Order {
	t.Helper()
	category := newCategory(t, "0", false)
	product := newProduct(t, kernel.NewUUID(), category, "100", nil, "0", 10)
	lines := []services.CartLine{{Product: product, Category: category, Quantity: 1}}
	factory := newFactory(t)

	o, err := factory.Build(
		newCheckout(t, customer.ID(), order.PaymentCashOnDelivery, order.DeliveryStandard),
		factory.GroupBySupplier(lines)[0], "ORD-000042", nil, now)
	require.NoError(t, err)
	require.NoError(t, o.Claim(agent.ID(), now))
	require.NoError(t, o.ConfirmClaim(agent, now))
	require.NoError(t, o.AdvanceDelivery(order.DeliveryOutForDelivery, agent, "", now))
	return o
}
