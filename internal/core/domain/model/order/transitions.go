package order

import (
	"slices"

	"orderflow/internal/core/domain/model/kernel"
)

// roleTransitions is the adjacency list of legal status changes per requesting role.
var roleTransitions = map[kernel.Role]map[Status][]Status{
	kernel.RoleCustomer: {
		StatusPending:   {StatusCancelled},
		StatusDelivered: {StatusReturned},
	},
	kernel.RoleSupplier: {
		StatusPending:        {StatusPending, StatusCancelled},
		StatusProcessing:     {StatusProcessing, StatusCancelled},
		StatusOutForDelivery: {StatusCancelled, StatusDamaged},
	},
	kernel.RoleAdmin: {
		StatusPending:        {StatusProcessing, StatusCancelled},
		StatusProcessing:     {StatusOutForDelivery, StatusCancelled},
		StatusOutForDelivery: {StatusDelivered, StatusCancelled, StatusDamaged},
		StatusDelivered:      {StatusReturned},
		StatusCancelled:      {StatusPending},
		StatusReturned:       {StatusProcessing},
	},
	kernel.RoleDeliveryAssociate: {
		StatusOutForDelivery: {StatusOutForDelivery},
	},
}

// systemTransitions are the changes the service makes on an agent's behalf: a self-claim
// moves the order into packaging, the delivery leg promotes it out for delivery, and
// verification or a failed attempt settles it.
var systemTransitions = map[Status][]Status{
	StatusPending:        {StatusPackaging},
	StatusProcessing:     {StatusPackaging, StatusOutForDelivery},
	StatusPackaging:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered, StatusFailed},
}

// CanTransition reports whether role may move an order from one status to another.
func CanTransition(role kernel.Role, from, to Status) bool {
	return slices.Contains(roleTransitions[role][from], to)
}

// CanPromote reports whether the system may move an order from one status to another.
func CanPromote(from, to Status) bool {
	return slices.Contains(systemTransitions[from], to)
}
