package order

import "errors"

var (
	ErrInvalidTransition         = errors.New("invalid status transition")
	ErrInvalidDeliveryTransition = errors.New("invalid delivery status transition")
	ErrReturnWindowExpired       = errors.New("return window expired")
	ErrNotReturnable             = errors.New("order is not returnable")
	ErrAlreadyAssigned           = errors.New("order already has a delivery agent")
	ErrChallengeExpired          = errors.New("delivery challenge expired")
	ErrInvalidCode               = errors.New("invalid delivery code")
	ErrTooManyAttempts           = errors.New("too many delivery code attempts")
	ErrInvoiceAlreadyIssued      = errors.New("invoice already issued")
)
