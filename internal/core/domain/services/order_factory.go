package services

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// SupplierGroup is the part of a cart sold by one supplier.
type SupplierGroup struct {
	SupplierID kernel.UUID
	Lines      []CartLine
}

// OrderFactory turns a resolved cart into one pending order per supplier.
//
// Example:
//
//	factory := services.NewOrderFactory(engine)
//	if err := factory.CheckStock(lines); err != nil {
//	    return err
//	}
//	for _, g := range factory.GroupBySupplier(lines) {
//	    o, err := factory.Build(checkout, g, nextNumber(), coupon, now)
//	    ...
//	}
type OrderFactory struct {
	pricing PricingEngine
}

func NewOrderFactory(pricing PricingEngine) OrderFactory {
	return OrderFactory{pricing: pricing}
}

// CheckStock fails with catalog.ErrInsufficientStock on the first product or variation
// whose stock cannot cover the quantity summed over all lines of the cart.
func (f OrderFactory) CheckStock(lines []CartLine) error {
	type key struct {
		product   kernel.UUID
		variation string
	}
	products := make(map[kernel.UUID]int)
	variations := make(map[key]int)

	for _, l := range lines {
		if err := l.Product.Validate(); err != nil {
			return err
		}
		if l.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("quantity", l.Quantity, 1, "∞")
		}

		products[l.Product.ID()] += l.Quantity
		if err := l.Product.CheckStock("", products[l.Product.ID()]); err != nil {
			return err
		}

		if l.Variation == "" {
			continue
		}
		k := key{product: l.Product.ID(), variation: l.Variation}
		variations[k] += l.Quantity
		if err := l.Product.CheckStock(l.Variation, variations[k]); err != nil {
			return err
		}
	}

	return nil
}

// GroupBySupplier splits lines by supplier, keeping suppliers in order of first
// appearance and lines in cart order.
func (f OrderFactory) GroupBySupplier(lines []CartLine) []SupplierGroup {
	index := make(map[kernel.UUID]int)
	groups := make([]SupplierGroup, 0)

	for _, l := range lines {
		supplierID := l.Product.SupplierID()
		i, ok := index[supplierID]
		if !ok {
			i = len(groups)
			index[supplierID] = i
			groups = append(groups, SupplierGroup{SupplierID: supplierID})
		}
		groups[i].Lines = append(groups[i].Lines, l)
	}

	return groups
}

// Build prices a supplier group and creates its pending order.
func (f OrderFactory) Build(
	checkout order.Checkout,
	group SupplierGroup,
	number string,
	coupon *catalog.Coupon,
	now time.Time,
) (*order.Order, error) {
	items, charges, err := f.pricing.Price(group.Lines, checkout.DeliveryOption, coupon, now)
	if err != nil {
		return nil, fmt.Errorf("pricing supplier %s: %w", group.SupplierID, err)
	}

	return order.NewOrder(
		kernel.NewUUID(),
		number,
		checkout,
		group.SupplierID,
		items,
		charges,
		f.pricing.EstimatedDelivery(checkout.DeliveryOption, now),
		now,
	)
}

// FormatOrderNumber renders a sequence value as a human-facing order number.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}
