// Package commands contains business operations that modify system state.
// Every handler follows the same shape: validate the command, open a unit of work,
// load aggregates, apply domain rules, persist, commit, and only then talk to the
// outside world (notifications, invoice rendering).
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	AgentRepoFactory interface {
		AgentRepository() ports.AgentRepository
	}

	CatalogRepoFactory interface {
		CatalogRepository() ports.CatalogRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CheckoutUoW covers checkout: catalog stock and new orders in one transaction.
	CheckoutUoW interface {
		TxManager
		OrderRepoFactory
		CatalogRepoFactory
	}

	CheckoutUoWFactory interface {
		Create() CheckoutUoW
	}

	// UoW manages transactions across orders and delivery agents.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   agentRepo := uow.AgentRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		AgentRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
