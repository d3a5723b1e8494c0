// Package agent contains the delivery agent aggregate: the person who claims or is
// assigned orders and carries them to the customer.
//
// Agents are managed by another service (onboarding, verification, shifts). The order
// flow reads their availability and position and updates their delivery counters.
package agent
