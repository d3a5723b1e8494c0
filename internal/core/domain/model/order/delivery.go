package order

import (
	"fmt"
	"slices"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// DeliveryStatus is the state of the delivery leg, driven by the assigned agent.
type DeliveryStatus string

const (
	DeliveryAssigned       DeliveryStatus = "assigned"
	DeliveryPickedUp       DeliveryStatus = "picked_up"
	DeliveryPackaging      DeliveryStatus = "packaging"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
	DeliveryFailed         DeliveryStatus = "failed"
)

// picked_up is part of the persisted vocabulary but nothing moves into or out of it.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryAssigned:       {DeliveryPackaging},
	DeliveryPackaging:      {DeliveryOutForDelivery},
	DeliveryOutForDelivery: {DeliveryDelivered, DeliveryFailed},
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch st := DeliveryStatus(s); st {
	case DeliveryAssigned, DeliveryPickedUp, DeliveryPackaging, DeliveryOutForDelivery, DeliveryDelivered, DeliveryFailed:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("deliveryStatus", fmt.Errorf("%q is not a valid delivery status", s))
	}
}

func (s DeliveryStatus) String() string {
	return string(s)
}

func (s DeliveryStatus) CanAdvanceTo(target DeliveryStatus) bool {
	return slices.Contains(deliveryTransitions[s], target)
}

// Delivery is the delivery leg of an order. The zero value means no agent is assigned.
type Delivery struct {
	agentID    *kernel.UUID
	assignedAt time.Time
	status     DeliveryStatus
	location   *kernel.Location
}

// RestoreDelivery rebuilds a delivery leg from storage. A nil agentID yields the
// unassigned zero value.
func RestoreDelivery(agentID *kernel.UUID, assignedAt time.Time, status DeliveryStatus, location *kernel.Location) Delivery {
	if agentID == nil {
		return Delivery{}
	}
	id := *agentID
	d := Delivery{agentID: &id, assignedAt: assignedAt, status: status}
	if location != nil {
		loc := *location
		d.location = &loc
	}
	return d
}

func (d Delivery) IsAssigned() bool {
	return d.agentID != nil
}

// AgentID returns the assigned agent, or nil.
func (d Delivery) AgentID() *kernel.UUID {
	if d.agentID == nil {
		return nil
	}
	id := *d.agentID
	return &id
}

func (d Delivery) IsAssignedTo(agentID kernel.UUID) bool {
	return d.agentID != nil && d.agentID.IsEqual(agentID)
}

func (d Delivery) AssignedAt() time.Time {
	return d.assignedAt
}

func (d Delivery) Status() DeliveryStatus {
	return d.status
}

// CurrentLocation returns the last reported agent position, or nil.
func (d Delivery) CurrentLocation() *kernel.Location {
	if d.location == nil {
		return nil
	}
	loc := *d.location
	return &loc
}
