package ports

import (
	"context"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
)

// CatalogRepository is the order service's view of the product catalog. Catalog
// administration lives elsewhere; the only write is the stock decrement at checkout.
type CatalogRepository interface {
	// GetProduct returns catalog.ErrProductNotFound for unknown ids.
	GetProduct(ctx context.Context, id kernel.UUID) (*catalog.Product, error)

	GetCategory(ctx context.Context, id kernel.UUID) (*catalog.Category, error)

	// GetCoupon looks a coupon up by its normalized code.
	GetCoupon(ctx context.Context, code string) (*catalog.Coupon, error)

	// DecrementStock lowers the stock of a product, and of its variation when selector
	// is not empty, only if enough is left. Otherwise it fails with
	// catalog.ErrInsufficientStock and changes nothing.
	DecrementStock(ctx context.Context, productID kernel.UUID, selector string, quantity int) error
}
