// Package services provides the domain services of the order flow: logic that spans
// aggregates or needs collaborators an aggregate should not hold (a clock, a logger,
// secrets).
//
// The package includes:
//   - PricingEngine: money breakdown of one supplier's share of a cart
//   - OrderFactory: splits a cart per supplier and builds priced pending orders
//   - OrderStateMachine: the entry point for every status change
//   - OrderDispatcher: assignment preconditions and proximity ranking
//   - DeliveryVerifier: one-time delivery codes and signed QR payloads
//   - InvoicePolicy: decides whether an order should be invoiced now
package services
