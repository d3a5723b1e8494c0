package services

import (
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderStateMachine is the entry point application code uses for requested status
// changes. It supplies the clock to the aggregate's transition rules and flags damaged
// orders for manual follow-up. System promotions happen inside the aggregate's delivery
// operations (ConfirmClaim, AdvanceDelivery, ConfirmDelivery).
type OrderStateMachine struct {
	clock  kernel.Clock
	logger *slog.Logger
}

func NewOrderStateMachine(clock kernel.Clock, logger *slog.Logger) *OrderStateMachine {
	return &OrderStateMachine{
		clock:  clock,
		logger: logger.With("component", "OrderStateMachine"),
	}
}

func (m *OrderStateMachine) Now() time.Time {
	return m.clock.Now()
}

// Apply performs a transition requested by actor through the role-scoped tables.
func (m *OrderStateMachine) Apply(o *order.Order, target order.Status, actor kernel.Actor, note string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	from := o.Status()
	if err := o.Transition(target, actor, note, m.clock.Now()); err != nil {
		return err
	}

	m.logger.Info("order status changed",
		"order", o.Number(), "from", from, "to", target, "actor", actor.String())
	if target == order.StatusDamaged {
		m.logger.Warn("order marked damaged, manual follow-up required",
			"order", o.Number(), "actor", actor.String(), "note", note)
	}
	return nil
}
