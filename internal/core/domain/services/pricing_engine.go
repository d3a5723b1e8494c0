package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

var hundred = decimal.NewFromInt(100)

// PricingPolicy holds the commercial constants of checkout.
type PricingPolicy struct {
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold decimal.Decimal
	StandardDeliveryFee   decimal.Decimal
	ExpressDeliveryFee    decimal.Decimal
	PlatformFee           decimal.Decimal
	StandardTransit       time.Duration
	ExpressTransit        time.Duration
}

// DefaultPricingPolicy: free delivery from 500, otherwise 40 standard or 100 express,
// platform fee 10, delivery in 5 days standard or 2 days express.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		StandardDeliveryFee:   decimal.NewFromInt(40),
		ExpressDeliveryFee:    decimal.NewFromInt(100),
		PlatformFee:           decimal.NewFromInt(10),
		StandardTransit:       5 * 24 * time.Hour,
		ExpressTransit:        2 * 24 * time.Hour,
	}
}

func (p PricingPolicy) Validate() error {
	var errList []error
	for name, v := range map[string]decimal.Decimal{
		"freeDeliveryThreshold": p.FreeDeliveryThreshold,
		"standardDeliveryFee":   p.StandardDeliveryFee,
		"expressDeliveryFee":    p.ExpressDeliveryFee,
		"platformFee":           p.PlatformFee,
	} {
		if v.IsNegative() {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", v)))
		}
	}
	if p.StandardTransit <= 0 || p.ExpressTransit <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("transit"))
	}
	return errors.Join(errList...)
}

// CartLine is one resolved line of a cart.
type CartLine struct {
	Product   *catalog.Product
	Category  *catalog.Category
	Quantity  int
	Variation string
}

// PricingEngine prices one supplier's share of a cart.
type PricingEngine struct {
	policy PricingPolicy
}

func NewPricingEngine(policy PricingPolicy) (PricingEngine, error) {
	if err := policy.Validate(); err != nil {
		return PricingEngine{}, err
	}
	return PricingEngine{policy: policy}, nil
}

func (e PricingEngine) Policy() PricingPolicy {
	return e.policy
}

// Price builds the order lines and the money breakdown for lines that all belong to
// one supplier.
//
//   - subtotal = Σ quantity × discounted unit price
//   - gst = Σ quantity × discounted unit price × product GST rate
//   - handling = Σ per line of the category handling fee, sub-categories only
//   - delivery = 0 from the free threshold, else the fee of the delivery option
//   - discount = coupon percent of the subtotal when the coupon applies at now
func (e PricingEngine) Price(
	lines []CartLine,
	option order.DeliveryOption,
	coupon *catalog.Coupon,
	now time.Time,
) ([]order.Item, order.Charges, error) {
	if len(lines) == 0 {
		return nil, order.Charges{}, errs.NewValueIsRequiredError("lines")
	}

	items := make([]order.Item, 0, len(lines))
	subtotal := decimal.Zero
	gst := decimal.Zero
	handling := decimal.Zero

	for _, l := range lines {
		if err := errors.Join(l.Product.Validate(), l.Category.Validate()); err != nil {
			return nil, order.Charges{}, err
		}

		unit, discounted, err := l.Product.Price(l.Variation)
		if err != nil {
			return nil, order.Charges{}, err
		}

		item, err := order.NewItem(l.Product.ID(), l.Quantity, unit, discounted, l.Variation)
		if err != nil {
			return nil, order.Charges{}, err
		}
		items = append(items, item)

		subtotal = subtotal.Add(item.LineTotal())
		gst = gst.Add(item.LineTotal().Mul(l.Product.GSTRate()))
		handling = handling.Add(l.Category.ChargedHandlingFee())
	}

	discount := decimal.Zero
	if coupon.AppliesAt(now) {
		discount = order.Round(subtotal.Mul(coupon.Percent()).Div(hundred))
	}

	charges, err := order.NewCharges(
		subtotal,
		discount,
		gst,
		e.policy.PlatformFee,
		handling,
		e.DeliveryCharge(subtotal, option),
	)
	if err != nil {
		return nil, order.Charges{}, err
	}

	return items, charges, nil
}

// DeliveryCharge is zero from the free-delivery threshold, else the option's flat fee.
func (e PricingEngine) DeliveryCharge(subtotal decimal.Decimal, option order.DeliveryOption) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(e.policy.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	if option == order.DeliveryExpress {
		return e.policy.ExpressDeliveryFee
	}
	return e.policy.StandardDeliveryFee
}

func (e PricingEngine) EstimatedDelivery(option order.DeliveryOption, now time.Time) time.Time {
	if option == order.DeliveryExpress {
		return now.Add(e.policy.ExpressTransit)
	}
	return now.Add(e.policy.StandardTransit)
}
