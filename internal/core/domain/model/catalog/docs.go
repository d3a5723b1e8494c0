// Package catalog holds the read side of the product catalog as the order flow sees it:
// products with optional variations, categories (with an optional parent) and coupons.
//
// The catalog is owned by another service. The order flow only reads it, and mutates
// stock through the conditional decrement exposed by ports.CatalogRepository.
package catalog
