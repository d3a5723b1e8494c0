package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// InvoiceFirer is the slice of TriggerInvoiceCommandHandler other handlers call after
// their own commit.
type InvoiceFirer interface {
	Handle(ctx context.Context, cmd TriggerInvoiceCommand) (TriggerInvoiceResult, error)
}

// notify hands n to the notifier. Failures are logged and never reach the caller.
func notify(ctx context.Context, notifier ports.Notifier, logger *slog.Logger, n ports.Notification) {
	if n.Recipient == "" {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.WarnContext(ctx, "notification not accepted",
			"template", n.TemplateKey, "channel", n.Channel, "error", err)
	}
}

// customerNotification addresses the customer of o, by email when one is on the
// shipping address and by SMS otherwise.
func customerNotification(o *order.Order, template string, payload map[string]string) ports.Notification {
	n := ports.Notification{
		Channel:     ports.ChannelSMS,
		Recipient:   o.Address().Phone(),
		TemplateKey: template,
		Payload:     map[string]string{"orderNumber": o.Number(), "status": o.Status().String()},
	}
	if o.Address().Email() != "" {
		n.Channel = ports.ChannelEmail
		n.Recipient = o.Address().Email()
	}
	for k, v := range payload {
		n.Payload[k] = v
	}
	return n
}

// fireInvoice runs the invoice trigger for orderID and logs any failure.
func fireInvoice(ctx context.Context, invoices InvoiceFirer, logger *slog.Logger, orderID kernel.UUID) {
	cmd, err := NewTriggerInvoiceCommand(orderID)
	if err != nil {
		logger.ErrorContext(ctx, "invoice trigger not built", "order", orderID.String(), "error", err)
		return
	}
	if _, err = invoices.Handle(ctx, cmd); err != nil {
		logger.ErrorContext(ctx, "invoice trigger failed", "order", orderID.String(), "error", err)
	}
}
