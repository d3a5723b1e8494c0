package services

import "orderflow/internal/core/domain/model/order"

// InvoiceDecision is the outcome of InvoicePolicy.Decide.
type InvoiceDecision int

const (
	InvoiceRender InvoiceDecision = iota
	InvoiceAlreadyIssued
	InvoiceNotEligible
)

func (d InvoiceDecision) String() string {
	switch d {
	case InvoiceRender:
		return "render"
	case InvoiceAlreadyIssued:
		return "already_issued"
	case InvoiceNotEligible:
		return "not_eligible"
	default:
		return "unknown"
	}
}

// InvoicePolicy decides whether an invoice should be rendered for an order now.
type InvoicePolicy struct{}

func NewInvoicePolicy() InvoicePolicy {
	return InvoicePolicy{}
}

func (InvoicePolicy) Decide(o *order.Order) InvoiceDecision {
	switch {
	case o.InvoiceRef() != "":
		return InvoiceAlreadyIssued
	case !o.IsInvoiceEligible():
		return InvoiceNotEligible
	default:
		return InvoiceRender
	}
}
