package ports

import (
	"context"

	"orderflow/internal/core/domain/model/agent"
	"orderflow/internal/core/domain/model/kernel"
)

// AgentRepository defines the persistence contract for delivery agents.
type AgentRepository interface {
	Add(ctx context.Context, aggregate *agent.Agent) error

	// Update is conditional on the loaded version, like OrderRepository.Update.
	Update(ctx context.Context, aggregate *agent.Agent) error

	Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error)
}
