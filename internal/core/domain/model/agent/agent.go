package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	// ErrAgentIsNotConstructed is returned when an Agent was not built by NewAgent or RestoreAgent.
	ErrAgentIsNotConstructed = errs.NewValueIsRequiredError("agent must be created via NewAgent or RestoreAgent")
	// ErrAgentUnavailable is returned when an offline or unverified agent is asked to take an order.
	ErrAgentUnavailable = fmt.Errorf("agent is not online and verified: %w", errs.ErrValueIsInvalid)
)

// Agent is a delivery agent.
//
// Business rules:
//   - only an online and verified agent can take an order
//   - delivery counters only grow, through RecordCompletedDelivery and RecordFailedDelivery
//   - earnings grow by the delivery charge of each completed delivery
//
// Example:
//
//	a, err := agent.NewAgent(kernel.NewUUID(), "Ravi Kumar", "+919800000002")
//	if err != nil {
//	    // Handle validation error
//	}
//	a.GoOnline()
type Agent struct {
	id                  kernel.UUID
	name                string
	phone               string
	online              bool
	verified            bool
	location            *kernel.Location
	completedDeliveries int
	failedDeliveries    int
	totalEarnings       decimal.Decimal
	version             int
	guard               guard.ConstructorGuard
}

// NewAgent creates an offline, unverified agent with no known position.
func NewAgent(id kernel.UUID, name, phone string) (*Agent, error) {
	a := &Agent{
		totalEarnings: decimal.Zero,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(a.setID(id), a.setName(name), a.setPhone(phone)); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAgent rebuilds an agent from storage.
func RestoreAgent(
	id kernel.UUID,
	name, phone string,
	online, verified bool,
	location *kernel.Location,
	completedDeliveries, failedDeliveries int,
	totalEarnings decimal.Decimal,
	version int,
) (*Agent, error) {
	a := &Agent{
		online:   online,
		verified: verified,
		version:  version,
		guard:    guard.NewConstructorGuard(),
	}

	var countersErr error
	if completedDeliveries < 0 || failedDeliveries < 0 || totalEarnings.IsNegative() {
		countersErr = errs.NewValueIsInvalidErrorWithCause("counters",
			fmt.Errorf("completed=%d failed=%d earnings=%s", completedDeliveries, failedDeliveries, totalEarnings))
	}
	if err := errors.Join(a.setID(id), a.setName(name), a.setPhone(phone), countersErr); err != nil {
		return nil, err
	}

	if location != nil {
		a.MoveTo(*location)
	}
	a.completedDeliveries = completedDeliveries
	a.failedDeliveries = failedDeliveries
	a.totalEarnings = totalEarnings

	return a, nil
}

func (a *Agent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

func (a *Agent) IsEqual(other *Agent) bool {
	return other != nil && a.id.IsEqual(other.id)
}

func (a *Agent) ID() kernel.UUID                { return a.id }
func (a *Agent) Name() string                   { return a.name }
func (a *Agent) Phone() string                  { return a.phone }
func (a *Agent) IsOnline() bool                 { return a.online }
func (a *Agent) IsVerified() bool               { return a.verified }
func (a *Agent) CompletedDeliveries() int       { return a.completedDeliveries }
func (a *Agent) FailedDeliveries() int          { return a.failedDeliveries }
func (a *Agent) TotalEarnings() decimal.Decimal { return a.totalEarnings }
func (a *Agent) Version() int                   { return a.version }

// Location returns the last known position, or nil when the agent never reported one.
func (a *Agent) Location() *kernel.Location {
	if a.location == nil {
		return nil
	}
	loc := *a.location
	return &loc
}

// IsAvailable reports whether the agent may take an order.
func (a *Agent) IsAvailable() bool {
	return a.online && a.verified
}

// EnsureAvailable returns ErrAgentUnavailable unless the agent may take an order.
func (a *Agent) EnsureAvailable() error {
	if !a.IsAvailable() {
		return fmt.Errorf("agent %s: %w", a.id, ErrAgentUnavailable)
	}
	return nil
}

func (a *Agent) GoOnline()  { a.online = true }
func (a *Agent) GoOffline() { a.online = false }
func (a *Agent) Verify()    { a.verified = true }

// MoveTo records the agent's current position. Invalid locations are ignored.
func (a *Agent) MoveTo(location kernel.Location) {
	if location.Validate() != nil {
		return
	}
	loc := location
	a.location = &loc
}

// RecordCompletedDelivery credits a verified delivery and its delivery charge.
func (a *Agent) RecordCompletedDelivery(deliveryCharge decimal.Decimal) error {
	if deliveryCharge.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("deliveryCharge", fmt.Errorf("%s is negative", deliveryCharge))
	}
	a.completedDeliveries++
	a.totalEarnings = a.totalEarnings.Add(deliveryCharge)
	return nil
}

// RecordFailedDelivery counts a delivery the agent could not complete.
func (a *Agent) RecordFailedDelivery() {
	a.failedDeliveries++
}

// MarkPersisted is called by repositories after a successful write.
func (a *Agent) MarkPersisted(version int) {
	a.version = version
}

func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Agent) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("name")
	}
	a.name = name
	return nil
}

func (a *Agent) setPhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	a.phone = phone
	return nil
}
