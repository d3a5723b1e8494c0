package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"orderflow/internal/pkg/errs"
)

// MoneyPlaces is the number of minor-unit digits every amount is rounded to.
const MoneyPlaces = 2

// Round rounds an amount to MoneyPlaces (half away from zero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Charges is the money breakdown of an order. Total always equals
// subtotal - discount + gst + delivery + platform + handling.
type Charges struct {
	subtotal       decimal.Decimal
	discount       decimal.Decimal
	gst            decimal.Decimal
	platformFee    decimal.Decimal
	handlingFee    decimal.Decimal
	deliveryCharge decimal.Decimal
	total          decimal.Decimal
}

// NewCharges rounds every component and derives the total from them.
func NewCharges(subtotal, discount, gst, platformFee, handlingFee, deliveryCharge decimal.Decimal) (Charges, error) {
	c := Charges{
		subtotal:       Round(subtotal),
		discount:       Round(discount),
		gst:            Round(gst),
		platformFee:    Round(platformFee),
		handlingFee:    Round(handlingFee),
		deliveryCharge: Round(deliveryCharge),
	}

	for name, v := range map[string]decimal.Decimal{
		"subtotal":       c.subtotal,
		"discount":       c.discount,
		"gst":            c.gst,
		"platformFee":    c.platformFee,
		"handlingFee":    c.handlingFee,
		"deliveryCharge": c.deliveryCharge,
	} {
		if v.IsNegative() {
			return Charges{}, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", v))
		}
	}
	if c.discount.GreaterThan(c.subtotal) {
		return Charges{}, errs.NewValueIsOutOfRangeError("discount", c.discount.String(), "0", c.subtotal.String())
	}

	c.total = c.expectedTotal()
	return c, nil
}

// RestoreCharges rebuilds a stored breakdown and rejects one whose total drifted.
func RestoreCharges(subtotal, discount, gst, platformFee, handlingFee, deliveryCharge, total decimal.Decimal) (Charges, error) {
	c, err := NewCharges(subtotal, discount, gst, platformFee, handlingFee, deliveryCharge)
	if err != nil {
		return Charges{}, err
	}
	if !c.total.Equal(Round(total)) {
		return Charges{}, errs.NewValueIsInvalidErrorWithCause("totalAmount",
			fmt.Errorf("stored total %s does not match computed %s", total, c.total))
	}
	return c, nil
}

func (c Charges) Subtotal() decimal.Decimal       { return c.subtotal }
func (c Charges) Discount() decimal.Decimal       { return c.discount }
func (c Charges) GST() decimal.Decimal            { return c.gst }
func (c Charges) PlatformFee() decimal.Decimal    { return c.platformFee }
func (c Charges) HandlingFee() decimal.Decimal    { return c.handlingFee }
func (c Charges) DeliveryCharge() decimal.Decimal { return c.deliveryCharge }
func (c Charges) Total() decimal.Decimal          { return c.total }

func (c Charges) expectedTotal() decimal.Decimal {
	return c.subtotal.
		Sub(c.discount).
		Add(c.gst).
		Add(c.deliveryCharge).
		Add(c.platformFee).
		Add(c.handlingFee)
}
