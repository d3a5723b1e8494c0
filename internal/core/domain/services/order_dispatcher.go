package services

import (
	"sort"
	"time"

	"orderflow/internal/core/domain/model/agent"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// NearbyPageSize caps the result of proximity queries.
const NearbyPageSize = 20

// OrderDispatcher is a domain service for matching orders with delivery agents.
//
// Key responsibilities:
//   - checking who may assign an agent and whether the agent can take the order
//   - checking whether an agent may claim an order for themselves
//   - ranking candidates by distance for the proximity queries
//
// The assignment itself is made by a conditional write in the repository, so
// concurrent callers cannot both win; the checks here only produce precise errors.
type OrderDispatcher struct{}

func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// PrepareAssignment validates an explicit assignment of a to o by actor and applies it
// to the in-memory order. Only admins and the order's supplier may assign.
func (d OrderDispatcher) PrepareAssignment(o *order.Order, a *agent.Agent, actor kernel.Actor, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if !actor.Is(kernel.RoleAdmin) && !actor.Is(kernel.RoleSupplier) {
		return errs.NewForbiddenError(actor.String(), "assignment of order "+o.Number())
	}
	if err := o.CheckAccess(actor); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if err := a.EnsureAvailable(); err != nil {
		return err
	}

	return o.AssignAgent(a.ID(), now)
}

// CheckClaimant validates that actor is an available delivery agent.
func (d OrderDispatcher) CheckClaimant(a *agent.Agent, actor kernel.Actor) error {
	if !actor.Is(kernel.RoleDeliveryAssociate) || !a.ID().IsEqual(actor.ID()) {
		return errs.NewForbiddenError(actor.String(), "self-assignment")
	}
	return a.EnsureAvailable()
}

// Measured is a proximity candidate with its distance from the query point.
type Measured[T any] struct {
	Item    T
	Meters  float64
	Seconds float64
}

// RankByDistance keeps candidates within maxMeters, nearest first, at most limit of
// them. Ties keep input order.
func RankByDistance[T any](candidates []Measured[T], maxMeters float64, limit int) []Measured[T] {
	out := make([]Measured[T], 0, len(candidates))
	for _, c := range candidates {
		if c.Meters <= maxMeters {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Meters < out[j].Meters
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
