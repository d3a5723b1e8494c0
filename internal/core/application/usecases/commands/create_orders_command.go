package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrdersCommandIsNotConstructed = errors.New(
		"CreateOrdersCommand must be created via NewCreateOrdersCommand constructor",
	)
	ErrCartIsEmpty = errs.NewValueIsRequiredError("lines")
)

// CheckoutLine is one cart line as submitted by the customer.
type CheckoutLine struct {
	ProductID kernel.UUID
	Quantity  int
	Variation string
}

// CreateOrdersCommand is a customer checkout. It produces one order per supplier.
//
// Example:
//
//	cmd, err := NewCreateOrdersCommand(customer, []CheckoutLine{{ProductID: id, Quantity: 2}},
//	    address, order.PaymentPrepaidUPI, order.DeliveryStandard, "WELCOME10", "")
//	if err != nil {
//	    return err
//	}
//	orders, err := handler.Handle(ctx, cmd)
type CreateOrdersCommand struct {
	customer       kernel.Actor
	lines          []CheckoutLine
	address        order.ShippingAddress
	paymentMethod  order.PaymentMethod
	deliveryOption order.DeliveryOption
	couponCode     string
	notes          string

	guard guard.ConstructorGuard
}

func NewCreateOrdersCommand(
	customer kernel.Actor,
	lines []CheckoutLine,
	address order.ShippingAddress,
	paymentMethod order.PaymentMethod,
	deliveryOption order.DeliveryOption,
	couponCode string,
	notes string,
) (CreateOrdersCommand, error) {
	cmd := CreateOrdersCommand{
		couponCode: catalog.NormalizeCode(couponCode),
		notes:      strings.TrimSpace(notes),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomer(customer),
		cmd.setLines(lines),
		cmd.setAddress(address),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setDeliveryOption(deliveryOption),
	); err != nil {
		return CreateOrdersCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrdersCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrdersCommandIsNotConstructed)
}

func (c CreateOrdersCommand) Customer() kernel.Actor { return c.customer }
func (c CreateOrdersCommand) CouponCode() string     { return c.couponCode }

func (c CreateOrdersCommand) Lines() []CheckoutLine {
	out := make([]CheckoutLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Checkout returns the customer-side data shared by every order of this checkout.
func (c CreateOrdersCommand) Checkout() order.Checkout {
	return order.Checkout{
		CustomerID:     c.customer.ID(),
		Address:        c.address,
		PaymentMethod:  c.paymentMethod,
		DeliveryOption: c.deliveryOption,
		CouponCode:     c.couponCode,
		Notes:          c.notes,
	}
}

func (c *CreateOrdersCommand) setCustomer(customer kernel.Actor) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	if !customer.Is(kernel.RoleCustomer) {
		return errs.NewForbiddenError(customer.String(), "checkout")
	}
	c.customer = customer
	return nil
}

func (c *CreateOrdersCommand) setLines(lines []CheckoutLine) error {
	if len(lines) == 0 {
		return ErrCartIsEmpty
	}

	var lineErrs []error
	for _, l := range lines {
		if err := l.ProductID.Validate(); err != nil {
			lineErrs = append(lineErrs, errs.NewValueIsRequiredErrorWithCause("productId", err))
		}
		if l.Quantity < 1 {
			lineErrs = append(lineErrs, errs.NewValueIsOutOfRangeError("quantity", l.Quantity, 1, "∞"))
		}
	}
	if err := errors.Join(lineErrs...); err != nil {
		return err
	}

	c.lines = make([]CheckoutLine, 0, len(lines))
	for _, l := range lines {
		l.Variation = strings.TrimSpace(l.Variation)
		c.lines = append(c.lines, l)
	}
	return nil
}

func (c *CreateOrdersCommand) setAddress(address order.ShippingAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}

func (c *CreateOrdersCommand) setPaymentMethod(method order.PaymentMethod) error {
	if _, err := order.ParsePaymentMethod(string(method)); err != nil {
		return err
	}
	c.paymentMethod = method
	return nil
}

func (c *CreateOrdersCommand) setDeliveryOption(option order.DeliveryOption) error {
	if _, err := order.ParseDeliveryOption(string(option)); err != nil {
		return err
	}
	c.deliveryOption = option
	return nil
}
