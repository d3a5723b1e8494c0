package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// InvoiceRenderer produces the invoice document for an order and returns its reference.
type InvoiceRenderer interface {
	Render(ctx context.Context, o *order.Order) (string, error)
}

// RenderLock is a short-lived, cross-process mutual exclusion keyed by name.
type RenderLock interface {
	// TryLock reports whether the caller now holds key. It never waits.
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}
