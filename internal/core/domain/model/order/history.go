package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	Status    Status
	ActorID   kernel.UUID
	ActorRole kernel.Role
	At        time.Time
	Note      string
}
