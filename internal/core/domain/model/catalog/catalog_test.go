package catalog_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

func newShirt(t *testing.T, discounted *decimal.Decimal) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"Linen shirt",
		decimal.NewFromInt(800),
		discounted,
		decimal.RequireFromString("0.05"),
		10,
		catalog.Variation{Selector: "XL", Surcharge: decimal.NewFromInt(50), Stock: 2},
	)
	require.NoError(t, err)
	return p
}

func TestProduct_Price(t *testing.T) {
	sale := decimal.NewFromInt(700)
	p := newShirt(t, &sale)

	unit, discounted, err := p.Price("")
	require.NoError(t, err)
	assert.True(t, unit.Equal(decimal.NewFromInt(800)))
	assert.True(t, discounted.Equal(decimal.NewFromInt(700)))

	unit, discounted, err = p.Price("XL")
	require.NoError(t, err)
	assert.True(t, unit.Equal(decimal.NewFromInt(850)))
	assert.True(t, discounted.Equal(decimal.NewFromInt(750)))

	_, _, err = p.Price("XXL")
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestProduct_Price_WithoutDiscount(t *testing.T) {
	p := newShirt(t, nil)

	unit, discounted, err := p.Price("XL")
	require.NoError(t, err)
	assert.True(t, unit.Equal(discounted))
	assert.Nil(t, p.DiscountedPrice())
}

func TestProduct_CheckStock(t *testing.T) {
	p := newShirt(t, nil)

	assert.NoError(t, p.CheckStock("", 10))
	assert.ErrorIs(t, p.CheckStock("", 11), catalog.ErrInsufficientStock)
	assert.NoError(t, p.CheckStock("XL", 2))
	assert.ErrorIs(t, p.CheckStock("XL", 3), catalog.ErrInsufficientStock, "variation stock is checked too")
	assert.ErrorIs(t, p.CheckStock("", 0), errs.ErrValueIsOutOfRange)
}

func TestNewProduct_Invalid(t *testing.T) {
	tooHigh := decimal.NewFromInt(900)
	_, err := catalog.NewProduct(
		kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(),
		" ",
		decimal.NewFromInt(800),
		&tooHigh,
		decimal.NewFromInt(2),
		-1,
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCategory_ChargedHandlingFee(t *testing.T) {
	fee := decimal.NewFromInt(15)

	top, err := catalog.NewCategory(kernel.NewUUID(), nil, fee)
	require.NoError(t, err)
	parentID := top.ID()
	sub, err := catalog.NewCategory(kernel.NewUUID(), &parentID, fee)
	require.NoError(t, err)

	assert.True(t, top.ChargedHandlingFee().IsZero())
	assert.True(t, sub.ChargedHandlingFee().Equal(fee))
}

func TestCoupon_AppliesAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	valid, err := catalog.NewCoupon(" welcome10 ", decimal.NewFromInt(10), &tomorrow, true)
	require.NoError(t, err)
	expired, _ := catalog.NewCoupon("OLD", decimal.NewFromInt(10), &yesterday, true)
	inactive, _ := catalog.NewCoupon("OFF", decimal.NewFromInt(10), nil, false)
	forever, _ := catalog.NewCoupon("ALWAYS", decimal.NewFromInt(5), nil, true)

	assert.Equal(t, "WELCOME10", valid.Code())
	assert.True(t, valid.AppliesAt(now))
	assert.False(t, expired.AppliesAt(now))
	assert.False(t, inactive.AppliesAt(now))
	assert.True(t, forever.AppliesAt(now))

	var missing *catalog.Coupon
	assert.False(t, missing.AppliesAt(now))
}

func TestNewCoupon_PercentOutOfRange(t *testing.T) {
	_, err := catalog.NewCoupon("X", decimal.NewFromInt(101), nil, true)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
