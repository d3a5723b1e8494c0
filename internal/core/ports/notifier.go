package ports

import "context"

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// Template keys understood by the transport service.
const (
	TemplateOrderPlaced        = "order_placed"
	TemplateOrderStatusChanged = "order_status_changed"
	TemplateAgentAssigned      = "delivery_agent_assigned"
	TemplateOutForDelivery     = "order_out_for_delivery"
	TemplateDeliveryFailed     = "delivery_failed"
	TemplateDeliveryOTP        = "delivery_otp"
	TemplateOrderDelivered     = "order_delivered"
)

type Notification struct {
	Channel     Channel
	Recipient   string
	TemplateKey string
	Payload     map[string]string
}

// Notifier hands a notification to the outbound transport. Implementations must not
// block the caller on delivery; the returned error only reports that the notification
// could not be accepted.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
