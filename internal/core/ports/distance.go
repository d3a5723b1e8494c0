package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
)

type Route struct {
	Meters  float64
	Seconds float64
}

// DistanceCalculator estimates the travel distance and time between two points.
type DistanceCalculator interface {
	Distance(ctx context.Context, origin, destination kernel.Location) (Route, error)
}
