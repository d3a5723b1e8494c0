package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"orderflow/internal/adapters/out/postgres/agentrepo"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
)

// Migrate creates or updates the schema: every table owned by the repositories and
// the order number sequence. It is idempotent.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&catalogrepo.CategoryDTO{},
		&catalogrepo.ProductDTO{},
		&catalogrepo.VariationDTO{},
		&catalogrepo.CouponDTO{},
		&agentrepo.AgentDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.StatusChangeDTO{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	stmt := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH 1", pq.QuoteIdentifier(orderrepo.NumberSequence))
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create order number sequence: %w", err)
	}

	return nil
}

// Truncate empties every table and restarts the order number sequence. Used by tests.
func Truncate(ctx context.Context, db *gorm.DB) error {
	stmt := "TRUNCATE TABLE order_status_history, order_items, orders, delivery_agents, " +
		"product_variations, products, categories, coupons"
	if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Exec(fmt.Sprintf("ALTER SEQUENCE %s RESTART WITH 1", pq.QuoteIdentifier(orderrepo.NumberSequence))).Error
}
