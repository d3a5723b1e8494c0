// Package ports defines the contracts between the application core and the outside
// world: persistence, notification transport, invoice rendering and distance lookups.
package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Orders are never deleted; status history rows are only ever appended.
type OrderRepository interface {
	// Add persists a new order with its items and initial history.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order. The write is conditional on the
	// version the order was loaded with; a stale order fails with errs.ErrVersionIsInvalid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with items, history, delivery and challenge state.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// NextNumber draws the next value of the human-facing order number sequence.
	NextNumber(ctx context.Context) (int64, error)

	// ClaimDelivery atomically sets the delivery agent of an unassigned order whose status
	// is one of allowed. It reports false when no row matched: the order is already
	// assigned, in another status, or missing.
	ClaimDelivery(ctx context.Context, orderID, agentID kernel.UUID, at time.Time, allowed []order.Status) (bool, error)

	// SetInvoiceRef stores ref unless the order already has one. It reports whether the
	// ref was stored.
	SetInvoiceRef(ctx context.Context, orderID kernel.UUID, ref string) (bool, error)

	// ListInvoicePending returns up to limit eligible orders without an invoice ref,
	// oldest first.
	ListInvoicePending(ctx context.Context, limit int) ([]kernel.UUID, error)

	// ClearExpiredChallenges removes delivery challenges that expired before now and
	// returns how many orders were touched.
	ClearExpiredChallenges(ctx context.Context, now time.Time) (int64, error)
}
