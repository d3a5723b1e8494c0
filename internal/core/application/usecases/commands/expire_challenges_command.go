package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrExpireChallengesCommandIsNotConstructed = errors.New(
	"ExpireChallengesCommand must be created via NewExpireChallengesCommand constructor",
)

// ExpireChallengesCommand clears delivery challenges whose time is up.
type ExpireChallengesCommand struct {
	guard guard.ConstructorGuard
}

func NewExpireChallengesCommand() ExpireChallengesCommand {
	return ExpireChallengesCommand{guard: guard.NewConstructorGuard()}
}

func (c ExpireChallengesCommand) Validate() error {
	return c.guard.Validate(ErrExpireChallengesCommandIsNotConstructed)
}
