package order

import (
	"errors"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Item is one order line. Prices are per unit; LineTotal is quantity × discounted price.
type Item struct {
	productID           kernel.UUID
	quantity            int
	unitPrice           decimal.Decimal
	discountedUnitPrice decimal.Decimal
	variation           string
	lineTotal           decimal.Decimal
}

func NewItem(productID kernel.UUID, quantity int, unitPrice, discountedUnitPrice decimal.Decimal, variation string) (Item, error) {
	var idErr, qtyErr, priceErr error
	if err := productID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("productID", err)
	}
	if quantity <= 0 {
		qtyErr = errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "∞")
	}
	if unitPrice.IsNegative() || discountedUnitPrice.IsNegative() || discountedUnitPrice.GreaterThan(unitPrice) {
		priceErr = errs.NewValueIsOutOfRangeError("discountedUnitPrice", discountedUnitPrice.String(), "0", unitPrice.String())
	}
	if err := errors.Join(idErr, qtyErr, priceErr); err != nil {
		return Item{}, err
	}

	return Item{
		productID:           productID,
		quantity:            quantity,
		unitPrice:           Round(unitPrice),
		discountedUnitPrice: Round(discountedUnitPrice),
		variation:           variation,
		lineTotal:           Round(discountedUnitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
	}, nil
}

func (i Item) ProductID() kernel.UUID               { return i.productID }
func (i Item) Quantity() int                        { return i.quantity }
func (i Item) UnitPrice() decimal.Decimal           { return i.unitPrice }
func (i Item) DiscountedUnitPrice() decimal.Decimal { return i.discountedUnitPrice }
func (i Item) Variation() string                    { return i.variation }
func (i Item) LineTotal() decimal.Decimal           { return i.lineTotal }
