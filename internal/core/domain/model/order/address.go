package order

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("shipping address must be created via NewShippingAddress")

// ShippingAddress is where an order is delivered. Point drives the proximity queries.
type ShippingAddress struct {
	recipient  string
	phone      string
	email      string
	line       string
	city       string
	postalCode string
	point      kernel.Location
	guard      guard.ConstructorGuard
}

func NewShippingAddress(recipient, phone, email, line, city, postalCode string, point kernel.Location) (ShippingAddress, error) {
	required := func(name, v string) error {
		if strings.TrimSpace(v) == "" {
			return errs.NewValueIsRequiredError(name)
		}
		return nil
	}

	if err := errors.Join(
		required("recipient", recipient),
		required("phone", phone),
		required("line", line),
		required("city", city),
		required("postalCode", postalCode),
		point.Validate(),
	); err != nil {
		return ShippingAddress{}, err
	}

	return ShippingAddress{
		recipient:  strings.TrimSpace(recipient),
		phone:      strings.TrimSpace(phone),
		email:      strings.TrimSpace(email),
		line:       strings.TrimSpace(line),
		city:       strings.TrimSpace(city),
		postalCode: strings.TrimSpace(postalCode),
		point:      point,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (a ShippingAddress) Recipient() string      { return a.recipient }
func (a ShippingAddress) Phone() string          { return a.phone }
func (a ShippingAddress) Email() string          { return a.email }
func (a ShippingAddress) Line() string           { return a.line }
func (a ShippingAddress) City() string           { return a.city }
func (a ShippingAddress) PostalCode() string     { return a.postalCode }
func (a ShippingAddress) Point() kernel.Location { return a.point }

func (a ShippingAddress) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}
