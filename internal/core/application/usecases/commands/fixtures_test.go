package commands_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"orderflow/internal/core/domain/model/agent"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

var clock = kernel.FixedClock{At: now}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func newAddress(t *testing.T) order.ShippingAddress {
	t.Helper()
	point, err := kernel.NewLocation(12.9716, 77.5946)
	require.NoError(t, err)
	addr, err := order.NewShippingAddress("Asha Rao", "+919800000001", "", "12 MG Road", "Bengaluru", "560001", point)
	require.NoError(t, err)
	return addr
}

func newFactory(t *testing.T) services.OrderFactory {
	t.Helper()
	engine, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)
	return services.NewOrderFactory(engine)
}

func newCategory(t *testing.T) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(kernel.NewUUID(), nil, decimal.Zero)
	require.NoError(t, err)
	return c
}

func newProduct(t *testing.T, supplierID kernel.UUID, category *catalog.Category, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(kernel.NewUUID(), supplierID, category.ID(), "product", dec(price), nil, decimal.Zero, stock)
	require.NoError(t, err)
	return p
}

func newPendingOrder(t *testing.T, customer, supplier kernel.Actor, method order.PaymentMethod) *order.Order {
	t.Helper()
	category := newCategory(t)
	product := newProduct(t, supplier.ID(), category, "100", 10)
	factory := newFactory(t)
	lines := []services.CartLine{{Product: product, Category: category, Quantity: 1}}
	checkout := order.Checkout{
		CustomerID:     customer.ID(),
		Address:        newAddress(t),
		PaymentMethod:  method,
		DeliveryOption: order.DeliveryStandard,
	}

	o, err := factory.Build(checkout, factory.GroupBySupplier(lines)[0], "ORD-000100", nil, now)
	require.NoError(t, err)
	return o
}

func newProcessingOrder(t *testing.T, customer, supplier kernel.Actor) *order.Order {
	t.Helper()
	o := newPendingOrder(t, customer, supplier, order.PaymentCashOnDelivery)
	require.NoError(t, o.Transition(order.StatusProcessing, newActor(t, kernel.RoleAdmin), "", now))
	return o
}

func newOutForDeliveryOrder(t *testing.T, customer, agentActor kernel.Actor) *order.Order {
	t.Helper()
	o := newPendingOrder(t, customer, newActor(t, kernel.RoleSupplier), order.PaymentCashOnDelivery)
	require.NoError(t, o.Claim(agentActor.ID(), now))
	require.NoError(t, o.ConfirmClaim(agentActor, now))
	require.NoError(t, o.AdvanceDelivery(order.DeliveryOutForDelivery, agentActor, "", now))
	return o
}

func newAvailableAgent(t *testing.T, id kernel.UUID) *agent.Agent {
	t.Helper()
	a, err := agent.NewAgent(id, "Ravi", "+919800000002")
	require.NoError(t, err)
	a.GoOnline()
	a.Verify()
	return a
}

func newVerifier(t *testing.T) *services.DeliveryVerifier {
	t.Helper()
	v, err := services.NewDeliveryVerifier([]byte("0123456789abcdef0123456789abcdef"), bcrypt.MinCost, clock)
	require.NoError(t, err)
	return v
}
