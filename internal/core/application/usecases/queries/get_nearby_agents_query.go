package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetNearbyAgentsQueryIsNotConstructed = errors.New(
	"GetNearbyAgentsQuery must be created via NewGetNearbyAgentsQuery constructor",
)

// GetNearbyAgentsQuery lists online, verified agents around a point.
type GetNearbyAgentsQuery struct {
	point     kernel.Location
	maxMeters float64
	guard     guard.ConstructorGuard
}

// NewGetNearbyAgentsQuery requires maxMeters in (0..MaxNearbyRadiusMeters].
func NewGetNearbyAgentsQuery(point kernel.Location, maxMeters float64) (GetNearbyAgentsQuery, error) {
	if err := validateRadius(point, maxMeters); err != nil {
		return GetNearbyAgentsQuery{}, err
	}
	return GetNearbyAgentsQuery{
		point:     point,
		maxMeters: maxMeters,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetNearbyAgentsQuery) Validate() error {
	return q.guard.Validate(ErrGetNearbyAgentsQueryIsNotConstructed)
}

func (q GetNearbyAgentsQuery) Point() kernel.Location { return q.point }
func (q GetNearbyAgentsQuery) MaxMeters() float64     { return q.maxMeters }

type GetNearbyAgentsQueryResponse struct {
	ID       kernel.UUID
	Name     string
	Location kernel.Location
	Meters   float64
	Seconds  float64
}
