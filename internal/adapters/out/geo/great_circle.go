// Package geo estimates travel between two points without an external routing service.
package geo

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// DefaultSpeed is a city two-wheeler average, in meters per second.
const DefaultSpeed = 6.0

var _ ports.DistanceCalculator = GreatCircle{}

// GreatCircle measures the haversine distance and derives the travel time from a
// constant speed.
type GreatCircle struct {
	speed float64
}

func NewGreatCircle(speed float64) (GreatCircle, error) {
	if speed <= 0 {
		return GreatCircle{}, errs.NewValueIsOutOfRangeError("speed", speed, "> 0", "unbounded")
	}
	return GreatCircle{speed: speed}, nil
}

func (g GreatCircle) Distance(ctx context.Context, origin, destination kernel.Location) (ports.Route, error) {
	if err := ctx.Err(); err != nil {
		return ports.Route{}, err
	}
	if err := origin.Validate(); err != nil {
		return ports.Route{}, err
	}
	if err := destination.Validate(); err != nil {
		return ports.Route{}, err
	}

	meters := origin.DistanceMeters(destination)
	return ports.Route{Meters: meters, Seconds: meters / g.speed}, nil
}
