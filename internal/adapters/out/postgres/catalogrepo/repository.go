// Package catalogrepo reads products, categories and coupons, and decrements stock at
// checkout.
package catalogrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

type GormCatalogRepository struct {
	db         *gorm.DB
	categories *CategoryCache
}

// NewGormCatalogRepository creates a repository. categories may be nil, which disables
// caching.
func NewGormCatalogRepository(db *gorm.DB, categories *CategoryCache) *GormCatalogRepository {
	return &GormCatalogRepository{
		db:         db,
		categories: categories,
	}
}

func (r *GormCatalogRepository) GetProduct(ctx context.Context, id kernel.UUID) (*catalog.Product, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProductDTO
	err := r.db.WithContext(ctx).
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("selector") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id)
		}
		return nil, err
	}

	return productToDomain(dto)
}

func (r *GormCatalogRepository) GetCategory(ctx context.Context, id kernel.UUID) (*catalog.Category, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if c, ok := r.categories.get(id); ok {
		return c, nil
	}

	var dto CategoryDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("category", id.String())
		}
		return nil, err
	}

	c, err := categoryToDomain(dto)
	if err != nil {
		return nil, err
	}
	r.categories.add(c)
	return c, nil
}

func (r *GormCatalogRepository) GetCoupon(ctx context.Context, code string) (*catalog.Coupon, error) {
	normalized := catalog.NormalizeCode(code)
	if normalized == "" {
		return nil, errs.NewValueIsRequiredError("code")
	}

	var dto CouponDTO
	if err := r.db.WithContext(ctx).First(&dto, "code = ?", normalized).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("coupon", normalized)
		}
		return nil, err
	}

	return couponToDomain(dto)
}

// DecrementStock relies on the caller's transaction: when the variation cannot cover
// quantity after the product row was lowered, rolling back restores both.
func (r *GormCatalogRepository) DecrementStock(ctx context.Context, productID kernel.UUID, selector string, quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&ProductDTO{}).
		Where("id = ? AND stock >= ?", productID.Bytes(), quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.explainMiss(ctx, productID, quantity)
	}

	if selector == "" {
		return nil
	}

	result = db.Model(&VariationDTO{}).
		Where("product_id = ? AND selector = ? AND stock >= ?", productID.Bytes(), selector, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&VariationDTO{}).
			Where("product_id = ? AND selector = ?", productID.Bytes(), selector).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s of product %s", catalog.ErrVariationNotFound, selector, productID)
		}
		return fmt.Errorf("%w: variation %s of product %s, requested %d",
			catalog.ErrInsufficientStock, selector, productID, quantity)
	}

	return nil
}

func (r *GormCatalogRepository) explainMiss(ctx context.Context, productID kernel.UUID, quantity int) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ProductDTO{}).Where("id = ?", productID.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, productID)
	}
	return fmt.Errorf("%w: product %s, requested %d", catalog.ErrInsufficientStock, productID, quantity)
}
