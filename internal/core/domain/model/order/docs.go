// Package order contains the Order aggregate: one purchase order per supplier per
// checkout, with its money breakdown, lifecycle status, append-only status history,
// delivery leg and the outstanding delivery-verification challenge.
//
// Two status vocabularies live here. Status is the order lifecycle driven by people
// (customers, suppliers, admins) through role-scoped transition tables, and
// DeliveryStatus is the narrower delivery-leg state driven by the assigned agent. The
// delivery leg only touches Status through Promote, the system transition table.
//
// Order state is private; every mutation goes through a method that enforces the
// rules and records history. Persistence adapters rebuild orders with RestoreOrder.
package order
