// Package postgres provides the GORM-based Unit of Work that binds the order, agent
// and catalog repositories to one database transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, categories)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	// All operations run in the same transaction
//	if err := uow.CatalogRepository().DecrementStock(ctx, productID, "", 2); err != nil {
//	    return err
//	}
//	if err := uow.OrderRepository().Add(ctx, o); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit is a no-op that returns gorm.ErrInvalidTransaction,
// so the deferred call above is safe to ignore.
//
// Concurrency Considerations:
//   - Each UnitOfWork instance holds one transaction and must not be shared between goroutines
//   - Repositories never lock rows; writes are conditional on the stored version instead
//   - Keep transactions short: notifications and invoice rendering happen after Commit
package postgres

import (
	"context"

	"gorm.io/gorm"

	"orderflow/internal/adapters/out/postgres/agentrepo"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/ports"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// The category cache is shared by every unit of work it creates.
type GormUnitOfWorkFactory struct {
	db         *gorm.DB
	categories *catalogrepo.CategoryCache
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
// categories may be nil.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db, catalogrepo.NewCategoryCache(256, 5*time.Minute))
func NewGormUnitOfWorkFactory(db *gorm.DB, categories *catalogrepo.CategoryCache) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{
		db:         db,
		categories: categories,
	}
}

// Create produces a new UnitOfWork instance. Each instance maintains its own
// transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:         f.db,
		categories: f.categories,
	}
}

// GormUnitOfWork coordinates one database transaction across repositories.
type GormUnitOfWork struct {
	db         *gorm.DB
	tx         *gorm.DB
	categories *catalogrepo.CategoryCache
}

// Begin initiates a new database transaction for the unit of work.
// Subsequent repository operations will execute within this transaction context.
// Multiple calls to Begin on the same instance are safe and will not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit finalizes all changes made within the current transaction.
// After commit, the transaction is closed and cannot be reused.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction.
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// OrderRepository provides access to order persistence within the unit of work.
// Operations run in the current transaction if one is active, otherwise they use
// the main database connection for immediate execution.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

func (uow *GormUnitOfWork) AgentRepository() ports.AgentRepository {
	return agentrepo.NewGormAgentRepository(uow.conn())
}

func (uow *GormUnitOfWork) CatalogRepository() ports.CatalogRepository {
	return catalogrepo.NewGormCatalogRepository(uow.conn(), uow.categories)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
