package catalogrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
)

type ProductDTO struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	SupplierID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	CategoryID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name            string           `gorm:"type:varchar(255);not null"`
	BasePrice       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	DiscountedPrice *decimal.Decimal `gorm:"type:numeric(12,2)"`
	GSTRate         decimal.Decimal  `gorm:"column:gst_rate;type:numeric(5,2);not null"`
	Stock           int              `gorm:"not null;check:stock >= 0"`

	Variations []VariationDTO `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (ProductDTO) TableName() string {
	return "products"
}

type VariationDTO struct {
	ProductID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Selector  string          `gorm:"type:varchar(64);primaryKey"`
	Surcharge decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock     int             `gorm:"not null;check:stock >= 0"`
}

func (VariationDTO) TableName() string {
	return "product_variations"
}

type CategoryDTO struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ParentID    *uuid.UUID      `gorm:"type:uuid;index"`
	HandlingFee decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (CategoryDTO) TableName() string {
	return "categories"
}

type CouponDTO struct {
	Code      string          `gorm:"type:varchar(64);primaryKey"`
	Percent   decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	ExpiresAt *time.Time
	Active    bool `gorm:"not null"`
}

func (CouponDTO) TableName() string {
	return "coupons"
}

// ProductFromDomain maps a product with its variations. Used to seed the catalog.
func ProductFromDomain(p *catalog.Product) ProductDTO {
	dto := ProductDTO{
		ID:              p.ID().Bytes(),
		SupplierID:      p.SupplierID().Bytes(),
		CategoryID:      p.CategoryID().Bytes(),
		Name:            p.Name(),
		BasePrice:       p.BasePrice(),
		DiscountedPrice: p.DiscountedPrice(),
		GSTRate:         p.GSTRate(),
		Stock:           p.Stock(),
	}
	for _, v := range p.Variations() {
		dto.Variations = append(dto.Variations, VariationDTO{
			ProductID: dto.ID,
			Selector:  v.Selector,
			Surcharge: v.Surcharge,
			Stock:     v.Stock,
		})
	}
	return dto
}

func CategoryFromDomain(c *catalog.Category) CategoryDTO {
	dto := CategoryDTO{
		ID:          c.ID().Bytes(),
		HandlingFee: c.HandlingFee(),
	}
	if parent := c.ParentID(); parent != nil {
		id := parent.Bytes()
		dto.ParentID = &id
	}
	return dto
}

func CouponFromDomain(c *catalog.Coupon) CouponDTO {
	return CouponDTO{
		Code:      c.Code(),
		Percent:   c.Percent(),
		ExpiresAt: c.ExpiresAt(),
		Active:    c.Active(),
	}
}

func productToDomain(dto ProductDTO) (*catalog.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	supplierID, err := kernel.UUIDFromBytes(dto.SupplierID[:])
	if err != nil {
		return nil, err
	}
	categoryID, err := kernel.UUIDFromBytes(dto.CategoryID[:])
	if err != nil {
		return nil, err
	}

	variations := make([]catalog.Variation, 0, len(dto.Variations))
	for _, v := range dto.Variations {
		variations = append(variations, catalog.Variation{
			Selector:  v.Selector,
			Surcharge: v.Surcharge,
			Stock:     v.Stock,
		})
	}

	return catalog.NewProduct(id, supplierID, categoryID, dto.Name, dto.BasePrice, dto.DiscountedPrice,
		dto.GSTRate, dto.Stock, variations...)
}

func categoryToDomain(dto CategoryDTO) (*catalog.Category, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var parentID *kernel.UUID
	if dto.ParentID != nil {
		parent, parentErr := kernel.UUIDFromBytes(dto.ParentID[:])
		if parentErr != nil {
			return nil, parentErr
		}
		parentID = &parent
	}

	return catalog.NewCategory(id, parentID, dto.HandlingFee)
}

func couponToDomain(dto CouponDTO) (*catalog.Coupon, error) {
	return catalog.NewCoupon(dto.Code, dto.Percent, dto.ExpiresAt, dto.Active)
}
