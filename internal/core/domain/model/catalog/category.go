package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCategoryIsNotConstructed = errs.NewValueIsRequiredError("category must be created via NewCategory")

// Category groups products. Only sub-categories (those with a parent) charge their
// handling fee.
type Category struct {
	id          kernel.UUID
	parentID    *kernel.UUID
	handlingFee decimal.Decimal
	guard       guard.ConstructorGuard
}

func NewCategory(id kernel.UUID, parentID *kernel.UUID, handlingFee decimal.Decimal) (*Category, error) {
	var parentErr error
	if parentID != nil {
		parentErr = validateID("parentID", *parentID)
	}
	var feeErr error
	if handlingFee.IsNegative() {
		feeErr = errs.NewValueIsInvalidErrorWithCause("handlingFee", fmt.Errorf("%s is negative", handlingFee))
	}
	if err := errors.Join(validateID("id", id), parentErr, feeErr); err != nil {
		return nil, err
	}

	c := &Category{
		id:          id,
		handlingFee: handlingFee,
		guard:       guard.NewConstructorGuard(),
	}
	if parentID != nil {
		p := *parentID
		c.parentID = &p
	}
	return c, nil
}

func (c *Category) ID() kernel.UUID { return c.id }

func (c *Category) ParentID() *kernel.UUID {
	if c.parentID == nil {
		return nil
	}
	p := *c.parentID
	return &p
}

func (c *Category) HasParent() bool { return c.parentID != nil }

func (c *Category) HandlingFee() decimal.Decimal { return c.handlingFee }

// ChargedHandlingFee is the fee a line in this category contributes: the handling fee
// for sub-categories, zero for top-level ones.
func (c *Category) ChargedHandlingFee() decimal.Decimal {
	if !c.HasParent() {
		return decimal.Zero
	}
	return c.handlingFee
}

func (c *Category) Validate() error {
	if c == nil {
		return ErrCategoryIsNotConstructed
	}
	return c.guard.Validate(ErrCategoryIsNotConstructed)
}
