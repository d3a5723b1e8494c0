package commands

import (
	"context"
	"fmt"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// TriggerInvoiceResult reports what a trigger did. Rendered is false when the order is
// not eligible, already has an invoice, or another trigger holds the render lock.
type TriggerInvoiceResult struct {
	Decision services.InvoiceDecision
	Rendered bool
	Ref      string
}

// TriggerInvoiceCommandHandler renders the invoice of an eligible order at most once.
//
// Concurrent triggers are serialized by the render lock, and the reference is stored
// only if none is set yet. A renderer failure releases the lock and leaves the order
// without a reference so a later trigger can retry.
type TriggerInvoiceCommandHandler struct {
	uowFactory OrderUoWFactory
	policy     services.InvoicePolicy
	renderer   ports.InvoiceRenderer
	lock       ports.RenderLock
	logger     *slog.Logger
}

func NewTriggerInvoiceCommandHandler(
	uowFactory OrderUoWFactory,
	policy services.InvoicePolicy,
	renderer ports.InvoiceRenderer,
	lock ports.RenderLock,
	logger *slog.Logger,
) TriggerInvoiceCommandHandler {
	return TriggerInvoiceCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		renderer:   renderer,
		lock:       lock,
		logger:     logger.With("component", "TriggerInvoiceCommandHandler"),
	}
}

func (h TriggerInvoiceCommandHandler) Handle(ctx context.Context, cmd TriggerInvoiceCommand) (TriggerInvoiceResult, error) {
	if err := cmd.Validate(); err != nil {
		return TriggerInvoiceResult{}, err
	}

	o, err := h.load(ctx, cmd.OrderID())
	if err != nil {
		return TriggerInvoiceResult{}, err
	}

	decision := h.policy.Decide(o)
	result := TriggerInvoiceResult{Decision: decision, Ref: o.InvoiceRef()}
	if decision != services.InvoiceRender {
		return result, nil
	}

	key := "invoice:" + o.ID().String()
	locked, err := h.lock.TryLock(ctx, key)
	if err != nil {
		return result, fmt.Errorf("acquire invoice lock for order %s: %w", o.Number(), err)
	}
	if !locked {
		h.logger.InfoContext(ctx, "invoice render already in progress", "order", o.Number())
		return result, nil
	}

	defer func() {
		if unlockErr := h.lock.Unlock(context.WithoutCancel(ctx), key); unlockErr != nil {
			h.logger.WarnContext(ctx, "invoice lock not released", "order", o.Number(), "error", unlockErr)
		}
	}()

	ref, err := h.renderer.Render(ctx, o)
	if err != nil {
		h.logger.ErrorContext(ctx, "invoice render failed", "order", o.Number(), "error", err)
		return result, fmt.Errorf("render invoice for order %s: %w", o.Number(), err)
	}

	stored, err := h.store(ctx, o.ID(), ref)
	if err != nil {
		return result, err
	}
	if !stored {
		h.logger.WarnContext(ctx, "invoice rendered for an order that already had one",
			"order", o.Number(), "ref", ref)
		result.Decision = services.InvoiceAlreadyIssued
		return result, nil
	}

	h.logger.InfoContext(ctx, "invoice issued", "order", o.Number(), "ref", ref)
	result.Rendered = true
	result.Ref = ref
	return result, nil
}

func (h TriggerInvoiceCommandHandler) load(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().Get(ctx, id)
}

func (h TriggerInvoiceCommandHandler) store(ctx context.Context, id kernel.UUID, ref string) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stored, err := uow.OrderRepository().SetInvoiceRef(ctx, id, ref)
	if err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return stored, nil
}
