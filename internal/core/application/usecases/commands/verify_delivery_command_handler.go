package commands

import (
	"context"
	"errors"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// VerifyDeliveryCommandHandler completes a delivery once the handover is proven.
//
// On success the order is delivered, paid and its challenge cleared, and the agent's
// counters and earnings grow, all in one transaction. The invoice trigger and the
// delivered notification run after commit and only log their failures.
//
// A failed check still commits the challenge bookkeeping (attempt counter, cleared
// expired challenge) before the error is returned; nothing else about the order changes.
type VerifyDeliveryCommandHandler struct {
	uowFactory UoWFactory
	verifier   *services.DeliveryVerifier
	invoices   InvoiceFirer
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewVerifyDeliveryCommandHandler(
	uowFactory UoWFactory,
	verifier *services.DeliveryVerifier,
	invoices InvoiceFirer,
	notifier ports.Notifier,
	logger *slog.Logger,
) VerifyDeliveryCommandHandler {
	return VerifyDeliveryCommandHandler{
		uowFactory: uowFactory,
		verifier:   verifier,
		invoices:   invoices,
		notifier:   notifier,
		logger:     logger.With("component", "VerifyDeliveryCommandHandler"),
	}
}

func (h VerifyDeliveryCommandHandler) Handle(ctx context.Context, cmd VerifyDeliveryCommand) (*order.Order, error) {
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

	orderRepo := uow.OrderRepository()
	agentActor := cmd.Agent()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if !agentActor.Is(kernel.RoleDeliveryAssociate) || !o.Delivery().IsAssignedTo(agentActor.ID()) {
		return nil, errs.NewForbiddenError(agentActor.String(), "delivery of order "+o.Number())
	}

	if verifyErr := h.check(o, cmd); verifyErr != nil {
		if !isChallengeFailure(verifyErr) {
			return nil, verifyErr
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return nil, err
		}
		if err = uow.Commit(ctx); err != nil {
			return nil, err
		}
		h.logger.InfoContext(ctx, "delivery verification failed", "order", o.Number(), "error", verifyErr)
		return nil, verifyErr
	}

	paymentConfirmed, err := o.ConfirmDelivery(agentActor, h.verifier.Now())
	if err != nil {
		return nil, err
	}

	agentRepo := uow.AgentRepository()
	a, err := agentRepo.Get(ctx, agentActor.ID())
	if err != nil {
		return nil, err
	}
	if err = a.RecordCompletedDelivery(o.Charges().DeliveryCharge()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = agentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "order delivered",
		"order", o.Number(), "agent", agentActor.ID().String(), "paymentConfirmed", paymentConfirmed)
	fireInvoice(ctx, h.invoices, h.logger, o.ID())
	notify(ctx, h.notifier, h.logger, customerNotification(o, ports.TemplateOrderDelivered, nil))

	return o, nil
}

func (h VerifyDeliveryCommandHandler) check(o *order.Order, cmd VerifyDeliveryCommand) error {
	if cmd.Code() != "" {
		return h.verifier.VerifyCode(o, cmd.Code())
	}
	return h.verifier.VerifyQR(o, cmd.QRPayload(), cmd.Agent().ID())
}

func isChallengeFailure(err error) bool {
	return errors.Is(err, order.ErrInvalidCode) ||
		errors.Is(err, order.ErrChallengeExpired) ||
		errors.Is(err, order.ErrTooManyAttempts)
}
