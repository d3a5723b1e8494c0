package commands

import (
	"context"
	"errors"
	"log/slog"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrdersCommandHandler turns a checkout into pending orders, one per supplier.
//
// The whole checkout is one transaction: every stock decrement and every order insert
// commits together or not at all. Order-placed notifications are sent after commit and
// never fail the checkout.
type CreateOrdersCommandHandler struct {
	uowFactory CheckoutUoWFactory
	factory    services.OrderFactory
	clock      kernel.Clock
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewCreateOrdersCommandHandler(
	uowFactory CheckoutUoWFactory,
	factory services.OrderFactory,
	clock kernel.Clock,
	notifier ports.Notifier,
	logger *slog.Logger,
) CreateOrdersCommandHandler {
	return CreateOrdersCommandHandler{
		uowFactory: uowFactory,
		factory:    factory,
		clock:      clock,
		notifier:   notifier,
		logger:     logger.With("component", "CreateOrdersCommandHandler"),
	}
}

func (h CreateOrdersCommandHandler) Handle(ctx context.Context, cmd CreateOrdersCommand) ([]*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	catalogRepo := uow.CatalogRepository()
	orderRepo := uow.OrderRepository()

	lines, err := h.resolve(ctx, catalogRepo, cmd.Lines())
	if err != nil {
		return nil, err
	}
	if err = h.factory.CheckStock(lines); err != nil {
		return nil, err
	}

	coupon, err := h.coupon(ctx, catalogRepo, cmd.CouponCode())
	if err != nil {
		return nil, err
	}

	for _, l := range cmd.Lines() {
		if err = catalogRepo.DecrementStock(ctx, l.ProductID, l.Variation, l.Quantity); err != nil {
			return nil, err
		}
	}

	now := h.clock.Now()
	groups := h.factory.GroupBySupplier(lines)
	orders := make([]*order.Order, 0, len(groups))
	for _, g := range groups {
		seq, seqErr := orderRepo.NextNumber(ctx)
		if seqErr != nil {
			return nil, seqErr
		}

		o, buildErr := h.factory.Build(cmd.Checkout(), g, services.FormatOrderNumber(seq), coupon, now)
		if buildErr != nil {
			return nil, buildErr
		}
		if err = orderRepo.Add(ctx, o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	for _, o := range orders {
		h.logger.InfoContext(ctx, "order placed",
			"order", o.Number(), "supplier", o.SupplierID().String(), "total", o.Charges().Total().StringFixed(2))
		notify(ctx, h.notifier, h.logger, customerNotification(o, ports.TemplateOrderPlaced, map[string]string{
			"total": o.Charges().Total().StringFixed(2),
		}))
	}

	return orders, nil
}

// resolve loads every product of the cart and its category. Categories are shared
// between lines.
func (h CreateOrdersCommandHandler) resolve(
	ctx context.Context,
	repo ports.CatalogRepository,
	lines []CheckoutLine,
) ([]services.CartLine, error) {
	categories := make(map[kernel.UUID]*catalog.Category)
	out := make([]services.CartLine, 0, len(lines))

	for _, l := range lines {
		product, err := repo.GetProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}

		category, ok := categories[product.CategoryID()]
		if !ok {
			category, err = repo.GetCategory(ctx, product.CategoryID())
			if err != nil {
				return nil, err
			}
			categories[product.CategoryID()] = category
		}

		out = append(out, services.CartLine{
			Product:   product,
			Category:  category,
			Quantity:  l.Quantity,
			Variation: l.Variation,
		})
	}

	return out, nil
}

// coupon returns nil when no code was given or the code is unknown.
func (h CreateOrdersCommandHandler) coupon(ctx context.Context, repo ports.CatalogRepository, code string) (*catalog.Coupon, error) {
	if code == "" {
		return nil, nil
	}

	c, err := repo.GetCoupon(ctx, code)
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.InfoContext(ctx, "unknown coupon ignored", "coupon", code)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
