package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrProductIsNotConstructed = errs.NewValueIsRequiredError("product must be created via NewProduct")

// Variation is a purchasable option of a product (size, colour...). Its price is the
// product price plus Surcharge, and it tracks its own stock.
type Variation struct {
	Selector  string
	Surcharge decimal.Decimal
	Stock     int
}

// Product is a catalog entry. DiscountedPrice is optional; when absent the base
// price is charged.
type Product struct {
	id              kernel.UUID
	supplierID      kernel.UUID
	categoryID      kernel.UUID
	name            string
	basePrice       decimal.Decimal
	discountedPrice *decimal.Decimal
	gstRate         decimal.Decimal
	stock           int
	variations      []Variation
	guard           guard.ConstructorGuard
}

func NewProduct(
	id, supplierID, categoryID kernel.UUID,
	name string,
	basePrice decimal.Decimal,
	discountedPrice *decimal.Decimal,
	gstRate decimal.Decimal,
	stock int,
	variations ...Variation,
) (*Product, error) {
	p := &Product{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		validateID("id", id),
		validateID("supplierID", supplierID),
		validateID("categoryID", categoryID),
		p.setName(name),
		p.setPrices(basePrice, discountedPrice),
		p.setGSTRate(gstRate),
		p.setStock(stock),
		p.setVariations(variations),
	); err != nil {
		return nil, err
	}

	p.id = id
	p.supplierID = supplierID
	p.categoryID = categoryID

	return p, nil
}

func (p *Product) ID() kernel.UUID            { return p.id }
func (p *Product) SupplierID() kernel.UUID    { return p.supplierID }
func (p *Product) CategoryID() kernel.UUID    { return p.categoryID }
func (p *Product) Name() string               { return p.name }
func (p *Product) BasePrice() decimal.Decimal { return p.basePrice }
func (p *Product) GSTRate() decimal.Decimal   { return p.gstRate }
func (p *Product) Stock() int                 { return p.stock }

func (p *Product) DiscountedPrice() *decimal.Decimal {
	if p.discountedPrice == nil {
		return nil
	}
	d := *p.discountedPrice
	return &d
}

func (p *Product) Variations() []Variation {
	out := make([]Variation, len(p.variations))
	copy(out, p.variations)
	return out
}

// Variation looks a variation up by selector.
func (p *Product) Variation(selector string) (Variation, bool) {
	for _, v := range p.variations {
		if v.Selector == selector {
			return v, true
		}
	}
	return Variation{}, false
}

// Price returns the list and the discounted unit price for a selector ("" means the
// plain product). Both include the variation surcharge.
func (p *Product) Price(selector string) (unit, discounted decimal.Decimal, err error) {
	surcharge := decimal.Zero
	if selector != "" {
		v, ok := p.Variation(selector)
		if !ok {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s of product %s", ErrVariationNotFound, selector, p.id)
		}
		surcharge = v.Surcharge
	}

	unit = p.basePrice.Add(surcharge)
	discounted = unit
	if p.discountedPrice != nil {
		discounted = p.discountedPrice.Add(surcharge)
	}

	return unit, discounted, nil
}

// CheckStock fails with ErrInsufficientStock when the product (and the selected
// variation, if any) cannot cover quantity.
func (p *Product) CheckStock(selector string, quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "∞")
	}
	if p.stock < quantity {
		return fmt.Errorf("%w: product %s has %d, requested %d", ErrInsufficientStock, p.id, p.stock, quantity)
	}
	if selector == "" {
		return nil
	}

	v, ok := p.Variation(selector)
	if !ok {
		return fmt.Errorf("%w: %s of product %s", ErrVariationNotFound, selector, p.id)
	}
	if v.Stock < quantity {
		return fmt.Errorf("%w: variation %s of product %s has %d, requested %d",
			ErrInsufficientStock, selector, p.id, v.Stock, quantity)
	}

	return nil
}

func (p *Product) Validate() error {
	if p == nil {
		return ErrProductIsNotConstructed
	}
	return p.guard.Validate(ErrProductIsNotConstructed)
}

func (p *Product) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("name")
	}
	p.name = name
	return nil
}

func (p *Product) setPrices(base decimal.Decimal, discounted *decimal.Decimal) error {
	if !base.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("basePrice", fmt.Errorf("%s is not greater than 0", base))
	}
	if discounted != nil && (discounted.IsNegative() || discounted.GreaterThan(base)) {
		return errs.NewValueIsOutOfRangeError("discountedPrice", discounted.String(), "0", base.String())
	}
	p.basePrice = base
	if discounted != nil {
		d := *discounted
		p.discountedPrice = &d
	}
	return nil
}

func (p *Product) setGSTRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errs.NewValueIsOutOfRangeError("gstRate", rate.String(), "0", "1")
	}
	p.gstRate = rate
	return nil
}

func (p *Product) setStock(stock int) error {
	if stock < 0 {
		return errs.NewValueIsInvalidErrorWithCause("stock", fmt.Errorf("%d is negative", stock))
	}
	p.stock = stock
	return nil
}

func (p *Product) setVariations(variations []Variation) error {
	seen := make(map[string]struct{}, len(variations))
	for _, v := range variations {
		if v.Selector == "" {
			return errs.NewValueIsRequiredError("variation selector")
		}
		if _, dup := seen[v.Selector]; dup {
			return errs.NewValueIsInvalidErrorWithCause("variations", fmt.Errorf("duplicate selector %q", v.Selector))
		}
		if v.Surcharge.IsNegative() || v.Stock < 0 {
			return errs.NewValueIsInvalidErrorWithCause("variations", fmt.Errorf("variation %q has negative surcharge or stock", v.Selector))
		}
		seen[v.Selector] = struct{}{}
	}
	p.variations = append([]Variation(nil), variations...)
	return nil
}

func validateID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
