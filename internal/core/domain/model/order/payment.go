package order

import (
	"fmt"
	"slices"

	"orderflow/internal/pkg/errs"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentPrepaidCard    PaymentMethod = "prepaid_card"
	PaymentPrepaidUPI     PaymentMethod = "prepaid_upi"
	PaymentPrepaidWallet  PaymentMethod = "prepaid_wallet"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCashOnDelivery, PaymentPrepaidCard, PaymentPrepaidUPI, PaymentPrepaidWallet:
		return m, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%q is not a valid payment method", s))
	}
}

func (m PaymentMethod) IsPrepaid() bool {
	return m != PaymentCashOnDelivery
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus is the payment state as reported by the processor (or implied by a
// verified cash-on-delivery hand-over).
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid},
	PaymentPaid:    {PaymentRefunded},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%q is not a valid payment status", s))
	}
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return slices.Contains(paymentTransitions[s], target)
}

func (s PaymentStatus) String() string {
	return string(s)
}

type DeliveryOption string

const (
	DeliveryStandard DeliveryOption = "standard"
	DeliveryExpress  DeliveryOption = "express"
)

func ParseDeliveryOption(s string) (DeliveryOption, error) {
	switch o := DeliveryOption(s); o {
	case DeliveryStandard, DeliveryExpress:
		return o, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("deliveryOption", fmt.Errorf("%q is not a valid delivery option", s))
	}
}

func (o DeliveryOption) String() string {
	return string(o)
}
