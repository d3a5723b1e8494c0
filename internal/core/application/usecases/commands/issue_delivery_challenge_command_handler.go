package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// IssueDeliveryChallengeCommandHandler replaces an order's delivery challenge and
// sends the new code and QR payload to the customer by SMS. Any earlier code and QR
// payload stop working once the transaction commits.
type IssueDeliveryChallengeCommandHandler struct {
	uowFactory OrderUoWFactory
	verifier   *services.DeliveryVerifier
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewIssueDeliveryChallengeCommandHandler(
	uowFactory OrderUoWFactory,
	verifier *services.DeliveryVerifier,
	notifier ports.Notifier,
	logger *slog.Logger,
) IssueDeliveryChallengeCommandHandler {
	return IssueDeliveryChallengeCommandHandler{
		uowFactory: uowFactory,
		verifier:   verifier,
		notifier:   notifier,
		logger:     logger.With("component", "IssueDeliveryChallengeCommandHandler"),
	}
}

func (h IssueDeliveryChallengeCommandHandler) Handle(
	ctx context.Context,
	cmd IssueDeliveryChallengeCommand,
) (services.IssuedChallenge, error) {
	if err := cmd.Validate(); err != nil {
		return services.IssuedChallenge{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.IssuedChallenge{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return services.IssuedChallenge{}, err
	}

	actor := cmd.Actor()
	if !actor.Is(kernel.RoleAdmin) &&
		(!actor.Is(kernel.RoleDeliveryAssociate) || !o.Delivery().IsAssignedTo(actor.ID())) {
		return services.IssuedChallenge{}, errs.NewForbiddenError(actor.String(), "delivery challenge of order "+o.Number())
	}

	issued, err := h.verifier.Issue(o)
	if err != nil {
		return services.IssuedChallenge{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return services.IssuedChallenge{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.IssuedChallenge{}, err
	}

	notify(ctx, h.notifier, h.logger, ports.Notification{
		Channel:     ports.ChannelSMS,
		Recipient:   o.Address().Phone(),
		TemplateKey: ports.TemplateDeliveryOTP,
		Payload: map[string]string{
			"orderNumber": o.Number(),
			"code":        issued.Code,
			"qrPayload":   issued.QRPayload,
			"expiresAt":   issued.ExpiresAt.Format(time.RFC3339),
		},
	})

	return issued, nil
}
