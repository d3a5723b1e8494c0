package kernel

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// Role is the capacity in which an actor calls the system.
type Role string

const (
	RoleCustomer          Role = "customer"
	RoleSupplier          Role = "supplier"
	RoleAdmin             Role = "admin"
	RoleDeliveryAssociate Role = "deliveryAssociate"
	// RoleSystem is used for transitions the service performs itself (promotion,
	// verification). It is never accepted from the outside.
	RoleSystem Role = "system"
)

var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor")

// ParseRole accepts only the externally assignable roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleSupplier, RoleAdmin, RoleDeliveryAssociate:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is an explicit role-tagged identity. Every state-changing operation
// receives one instead of reading ambient request state.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

func NewActor(id UUID, role Role) (Actor, error) {
	a := Actor{guard: guard.NewConstructorGuard()}

	if err := errors.Join(a.setID(id), a.setRole(role)); err != nil {
		return Actor{}, err
	}

	return a, nil
}

// SystemActor tags transitions performed on behalf of id (usually an agent).
func SystemActor(id UUID) Actor {
	return Actor{id: id, role: RoleSystem, guard: guard.NewConstructorGuard()}
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) Is(role Role) bool {
	return a.role == role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.role, a.id)
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a *Actor) setID(id UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Actor) setRole(role Role) error {
	switch role {
	case RoleCustomer, RoleSupplier, RoleAdmin, RoleDeliveryAssociate, RoleSystem:
		a.role = role
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", role))
	}
}
