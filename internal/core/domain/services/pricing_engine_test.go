package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
)

func assertTotalInvariant(t *testing.T, c order.Charges) {
	t.Helper()
	want := c.Subtotal().Sub(c.Discount()).Add(c.GST()).Add(c.DeliveryCharge()).Add(c.PlatformFee()).Add(c.HandlingFee())
	assert.True(t, want.Equal(c.Total()), "total %s != %s", c.Total(), want)
}

func TestPricingEngine_Price(t *testing.T) {
	engine, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)

	sub := newCategory(t, "15", true)
	top := newCategory(t, "99", false)
	supplier := kernel.NewUUID()
	sale := "90"
	shirt := newProduct(t, supplier, sub, "100", &sale, "0.05", 10,
		catalog.Variation{Selector: "XL", Surcharge: dec("10"), Stock: 5})
	mug := newProduct(t, supplier, top, "50", nil, "0.12", 10)

	items, charges, err := engine.Price([]services.CartLine{
		{Product: shirt, Category: sub, Quantity: 2, Variation: "XL"},
		{Product: mug, Category: top, Quantity: 1},
	}, order.DeliveryStandard, nil, now)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].UnitPrice().Equal(dec("110")))
	assert.True(t, items[0].DiscountedUnitPrice().Equal(dec("100")))
	assert.True(t, items[0].LineTotal().Equal(dec("200")))

	// subtotal 200 + 50; gst 200*0.05 + 50*0.12; handling only for the sub-category line
	assert.True(t, charges.Subtotal().Equal(dec("250")))
	assert.True(t, charges.GST().Equal(dec("16")))
	assert.True(t, charges.HandlingFee().Equal(dec("15")))
	assert.True(t, charges.PlatformFee().Equal(dec("10")))
	assert.True(t, charges.DeliveryCharge().Equal(dec("40")))
	assert.True(t, charges.Discount().IsZero())
	assert.True(t, charges.Total().Equal(dec("331")))
	assertTotalInvariant(t, charges)
}

func TestPricingEngine_DeliveryCharge(t *testing.T) {
	engine, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)

	assert.True(t, engine.DeliveryCharge(dec("499.99"), order.DeliveryStandard).Equal(dec("40")))
	assert.True(t, engine.DeliveryCharge(dec("499.99"), order.DeliveryExpress).Equal(dec("100")))
	assert.True(t, engine.DeliveryCharge(dec("500"), order.DeliveryExpress).IsZero())
}

func TestPricingEngine_Coupon(t *testing.T) {
	engine, _ := services.NewPricingEngine(services.DefaultPricingPolicy())
	category := newCategory(t, "0", false)
	product := newProduct(t, kernel.NewUUID(), category, "333.33", nil, "0", 10)
	lines := []services.CartLine{{Product: product, Category: category, Quantity: 1}}

	valid, err := catalog.NewCoupon("SAVE10", decimal.NewFromInt(10), nil, true)
	require.NoError(t, err)
	inactive, err := catalog.NewCoupon("OFF", decimal.NewFromInt(10), nil, false)
	require.NoError(t, err)

	_, charges, err := engine.Price(lines, order.DeliveryStandard, valid, now)
	require.NoError(t, err)
	assert.True(t, charges.Discount().Equal(dec("33.33")))
	assertTotalInvariant(t, charges)

	_, charges, err = engine.Price(lines, order.DeliveryStandard, inactive, now)
	require.NoError(t, err)
	assert.True(t, charges.Discount().IsZero(), "an inactive coupon is a no-op")
}

func TestPricingEngine_EstimatedDelivery(t *testing.T) {
	engine, _ := services.NewPricingEngine(services.DefaultPricingPolicy())

	assert.Equal(t, now.AddDate(0, 0, 5), engine.EstimatedDelivery(order.DeliveryStandard, now))
	assert.Equal(t, now.AddDate(0, 0, 2), engine.EstimatedDelivery(order.DeliveryExpress, now))
}

func TestPricingPolicy_Validate(t *testing.T) {
	policy := services.DefaultPricingPolicy()
	policy.PlatformFee = dec("-1")
	policy.ExpressTransit = 0

	_, err := services.NewPricingEngine(policy)

	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
